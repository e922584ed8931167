package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type transcriptExport struct {
	Title    string            `json:"title" yaml:"title"`
	SavedAt  time.Time         `json:"savedAt" yaml:"savedAt"`
	Messages []exportedMessage `json:"messages" yaml:"messages"`
}

type exportedMessage struct {
	ID     string    `json:"id" yaml:"id"`
	Text   string    `json:"text" yaml:"text"`
	Origin string    `json:"origin" yaml:"origin"`
	SentAt time.Time `json:"sentAt" yaml:"sentAt"`
}

// exporter writes a transcript dump in one format.
type exporter interface {
	export(w io.Writer, dump transcriptExport) error
	extension() string
}

type yamlExporter struct{}

func (yamlExporter) export(w io.Writer, dump transcriptExport) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(dump)
}

func (yamlExporter) extension() string { return "yaml" }

type jsonExporter struct{}

func (jsonExporter) export(w io.Writer, dump transcriptExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

func (jsonExporter) extension() string { return "json" }

func exporterForPath(path string) exporter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return jsonExporter{}
	}
	return yamlExporter{}
}

func buildExport(title string, messages []chatMessage) transcriptExport {
	return transcriptExport{
		Title:   title,
		SavedAt: time.Now(),
		Messages: lo.Map(messages, func(m chatMessage, _ int) exportedMessage {
			return exportedMessage{
				ID:     m.ID,
				Text:   m.Text,
				Origin: string(m.Origin),
				SentAt: m.SentAt,
			}
		}),
	}
}

func saveTranscript(path, title string, messages []chatMessage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporterForPath(path).export(f, buildExport(title, messages)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func defaultExportPath(now time.Time) string {
	return fmt.Sprintf("chatrelay-%s.yaml", now.Format("20060102-150405"))
}
