package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

// Generator renders the alerts of one zone as an RSS 2.0 channel.
type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: cmp.Or(version, "dev")}
}

// Run writes records in the order given. description is used when there are no records.
func (g *Generator) Run(zoneConfig *Config, records []Record, selfLink, description string, buildTime time.Time) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", fmt.Sprintf("Avisos: %s", zoneConfig.TargetZone), 4)
	g.writeElement(&buf, "link", selfLink, 4)
	g.writeElement(&buf, "description", cmp.Or(description, fmt.Sprintf("Avisos meteorológicos para %s", zoneConfig.TargetZone)), 4)

	if selfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(selfLink)))
	}

	g.writeElement(&buf, "lastBuildDate", buildTime.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Weather-Advices/%s", g.version), 4)
	g.writeElement(&buf, "language", "es", 4)

	for _, record := range records {
		g.writeItem(&buf, zoneConfig, record)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, zoneConfig *Config, record Record) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(g.guid(zoneConfig, record)))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", record.Title, 6)
	g.writeElement(buf, "description", cmp.Or(record.Description, "No description available"), 6)
	g.writeElement(buf, "pubDate", record.ValidFrom.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", record.Phenomenon, 6)
	g.writeElement(buf, "category", record.Severity.String(), 6)

	buf.WriteString("    </item>\n")
}

// guid is stable across runs for the same alert window.
func (g *Generator) guid(zoneConfig *Config, record Record) string {
	return strings.Join([]string{
		zoneConfig.Name,
		record.Phenomenon,
		record.Severity.String(),
		record.ValidFrom.UTC().Format("20060102T1504"),
		record.ValidUntil.UTC().Format("20060102T1504"),
	}, ":")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
