package cfg

type Cfg struct {
	// Application configuration
	ZonesDir     string
	Port         string
	APIAccessKey string
	Once         bool

	// Background refresh
	RefreshInterval int
	WorkerCount     int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
