// services/citation_service.go
package services

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
	"mvdan.cc/xurls/v2"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/providers/common"
)

type citationService struct{}

func NewCitationService() CitationService {
	return &citationService{}
}

// ExtractCitations turns provider grounding metadata into citation records.
// Duplicate URLs collapse to one record and the first non-empty title wins.
func (s *citationService) ExtractCitations(grounding *common.GroundingMetadata) []CitationRecord {
	chunks := grounding.WebChunks()
	records := make([]CitationRecord, 0, len(chunks))
	seen := make(map[string]int)

	for _, chunk := range chunks {
		urlStr := strings.TrimSpace(chunk.URI)
		if urlStr == "" {
			continue
		}

		if idx, ok := seen[urlStr]; ok {
			// Already recorded; backfill the title if the first sighting had none.
			if records[idx].Title == nil && chunk.Title != "" {
				title := chunk.Title
				records[idx].Title = &title
			}
			continue
		}

		record := CitationRecord{
			URL:    urlStr,
			Domain: citationDomain(urlStr),
			Type:   models.CitationTypeSecondary,
		}
		if chunk.Title != "" {
			title := chunk.Title
			record.Title = &title
		}

		seen[urlStr] = len(records)
		records = append(records, record)
	}

	return records
}

// Image extensions to skip in the raw-text fallback
var imageExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".webp",
}

// ExtractCitationsFromText is the fallback for responses without grounding
// metadata: scan the text itself for http(s) URLs, strip tracking params,
// and skip image links.
func (s *citationService) ExtractCitationsFromText(responseText string) []CitationRecord {
	var records []CitationRecord
	seen := make(map[string]bool)

	// Strict() only finds URLs that carry a scheme
	matches := xurls.Strict().FindAllString(responseText, -1)

	for _, match := range matches {
		urlStr := strings.TrimSpace(match)

		u, err := url.Parse(urlStr)
		if err != nil {
			fmt.Printf("[ExtractCitationsFromText] ⚠️ Skipping unparseable URL: %s\n", urlStr)
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue // skip mailto:, ftp:, etc.
		}

		// Clean the URL: drop "www.", remove UTM parameters, trim the
		// trailing slash after reassembly.
		u.Host = strings.TrimPrefix(u.Hostname(), "www.")
		q := u.Query()
		for param := range q {
			if strings.HasPrefix(strings.ToLower(param), "utm_") {
				q.Del(param)
			}
		}
		u.RawQuery = q.Encode()
		finalURL := strings.TrimRight(u.String(), "/")

		if finalURL == "" || seen[finalURL] {
			continue
		}

		pathLower := strings.ToLower(u.Path)
		isImage := false
		for _, ext := range imageExtensions {
			if strings.HasSuffix(pathLower, ext) {
				isImage = true
				break
			}
		}
		if isImage {
			continue
		}

		seen[finalURL] = true
		records = append(records, CitationRecord{
			URL:    finalURL,
			Domain: citationDomain(finalURL),
			Type:   models.CitationTypeSecondary,
		})
	}

	return records
}

// ClassifyCitations marks each record primary when its base domain matches
// one of the project's own websites, secondary otherwise.
func (s *citationService) ClassifyCitations(records []CitationRecord, projectWebsites []string) {
	for i := range records {
		if isPrimaryDomain(records[i].URL, projectWebsites) {
			records[i].Type = models.CitationTypePrimary
		} else {
			records[i].Type = models.CitationTypeSecondary
		}
	}
}

// citationDomain derives the grouping key for a URL: lowercase hostname
// without the "www." prefix. A URL we cannot parse still gets a record, with
// the raw string standing in as its domain.
func citationDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Hostname() == "" {
		return urlStr
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}

// getBaseDomain extracts the base domain (eTLD+1) from a URL using publicsuffix
func getBaseDomain(urlStr string) (string, error) {
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL %s: %w", urlStr, err)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("no hostname found in URL: %s", urlStr)
	}

	baseDomain, err := publicsuffix.EffectiveTLDPlusOne(hostname)
	if err != nil {
		return "", fmt.Errorf("failed to get base domain for %s: %w", hostname, err)
	}

	return baseDomain, nil
}

// isPrimaryDomain checks if a citation URL belongs to any of the project's own domains
func isPrimaryDomain(citationURL string, projectWebsites []string) bool {
	citationBase, err := getBaseDomain(citationURL)
	if err != nil {
		return false
	}

	for _, website := range projectWebsites {
		siteBase, err := getBaseDomain(website)
		if err != nil {
			continue
		}
		if strings.EqualFold(citationBase, siteBase) {
			return true
		}
	}
	return false
}
