// Package uploader generates the ShareX custom-uploader definition files
// (.sxcu) from the site config. The files are regenerated on every startup so
// they always reflect the current domain and upload token.
package uploader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sxfs/internal/auth"
	"sxfs/internal/config"
)

// Definition mirrors the ShareX custom uploader JSON schema. Field names are
// dictated by the client.
type Definition struct {
	Version         string            `json:"Version"`
	Name            string            `json:"Name"`
	DestinationType string            `json:"DestinationType"`
	RequestMethod   string            `json:"RequestMethod"`
	RequestURL      string            `json:"RequestURL"`
	Headers         map[string]string `json:"Headers"`
	Body            string            `json:"Body,omitempty"`
	URL             string            `json:"URL"`
	DeletionURL     string            `json:"DeletionURL,omitempty"`
}

// ForUploads builds the file-uploader definition.
func ForUploads(site *config.Site) Definition {
	return Definition{
		Version:         "13.1.0",
		Name:            site.Name,
		DestinationType: "ImageUploader, TextUploader, FileUploader",
		RequestMethod:   "POST",
		RequestURL:      site.UploadBaseURL() + "/u?filename={filename}",
		Headers:         map[string]string{auth.TokenHeader: site.UploadToken},
		Body:            "Binary",
		URL:             site.BaseURL() + "/u/{json:id}/{json:filename}",
		DeletionURL:     site.BaseURL() + "/u/d/{json:id}",
	}
}

// ForLinks builds the URL-shortener definition.
func ForLinks(site *config.Site) Definition {
	return Definition{
		Version:         "13.1.0",
		Name:            site.Name,
		DestinationType: "URLShortener",
		RequestMethod:   "POST",
		RequestURL:      site.UploadBaseURL() + "/l?uri={input}",
		Headers:         map[string]string{auth.TokenHeader: site.UploadToken},
		URL:             site.BaseURL() + "/l/{json:id}",
	}
}

// Generate writes both definition files to their configured paths.
func Generate(cfg *config.Config) error {
	if err := write(cfg.UploaderPath, ForUploads(&cfg.Site)); err != nil {
		return err
	}
	return write(cfg.ShortenerPath, ForLinks(&cfg.Site))
}

func write(path string, def Definition) error {
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal uploader definition: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create uploader directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write uploader definition %s: %w", path, err)
	}

	return nil
}
