// Package httpcuration serves package curations from a remote HTTP endpoint.
package httpcuration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"depscope/internal/model"
	"depscope/internal/plugin"
)

const providerName = "http"

var (
	optURL = plugin.Option{
		Name:        "url",
		Description: "Endpoint answering curation batch queries.",
		Type:        plugin.StringType,
		Required:    true,
		Aliases:     []string{"endpoint"},
	}
	optTimeout = plugin.Option{
		Name:        "timeout",
		Description: "Request timeout in seconds.",
		Type:        plugin.IntType,
		Default:     "30",
	}
	optToken = plugin.Option{
		Name:        "token",
		Description: "Bearer token sent with each request.",
		Type:        plugin.SecretType,
		Nullable:    true,
	}
)

// Descriptor describes the plugin and its options.
func Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          providerName,
		DisplayName: "Curations Endpoint",
		Description: "Queries a remote endpoint with the package batch and applies the curations it returns.",
		Options:     []plugin.Option{optURL, optTimeout, optToken},
	}
}

// Factory returns the registry factory for the http provider.
func Factory() plugin.Factory[plugin.CurationProvider] {
	return plugin.NewFactory(Descriptor(), func(config plugin.Config) (plugin.CurationProvider, error) {
		url, err := optURL.StringValue(config)
		if err != nil {
			return nil, err
		}
		timeout, _, err := optTimeout.IntValue(config)
		if err != nil {
			return nil, err
		}
		token, err := optToken.StringValue(config)
		if err != nil {
			return nil, err
		}
		return &Provider{
			url:    url,
			token:  token,
			client: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		}, nil
	})
}

// Provider queries one endpoint per run with the full batch. Transport and
// server failures surface as errors so the caller's retry policy applies;
// malformed records inside a successful response degrade to issues.
type Provider struct {
	url    string
	token  string
	client *http.Client
	issues []model.Issue
}

func (p *Provider) Name() string { return providerName }

type curationQuery struct {
	IDs []string `json:"ids"`
}

type curationRecord struct {
	ID        string                    `json:"id"`
	Curations model.PackageCurationData `json:"curations"`
}

// GetCurationsFor posts the batch identifiers and decodes the matching
// curation records.
func (p *Provider) GetCurationsFor(ctx context.Context, pkgs []model.Package) ([]model.PackageCuration, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		ids = append(ids, pkg.ID.String())
	}

	body, err := json.Marshal(curationQuery{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal curation query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("curation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("curation endpoint returned status: %s", resp.Status)
	}

	var records []curationRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode curation response: %w", err)
	}

	curations := make([]model.PackageCuration, 0, len(records))
	for i, record := range records {
		id, err := model.ParseIdentifier(record.ID)
		if err != nil {
			p.issues = append(p.issues, model.NewIssue(providerName, model.SeverityWarning,
				"skipped curation record %d from %s: %v", i, p.url, err))
			continue
		}
		curations = append(curations, model.PackageCuration{ID: id, Data: record.Curations})
	}
	return curations, nil
}

// Issues returns the response records that failed to parse.
func (p *Provider) Issues() []model.Issue { return p.issues }
