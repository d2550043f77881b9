package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

type Sensitivity string

const (
	// SensitivityUnset means no analysis has classified the document yet.
	SensitivityUnset          Sensitivity = ""
	SensitivitySafe           Sensitivity = "safe"
	SensitivityMaybeSensitive Sensitivity = "maybe_sensitive"
	SensitivitySensitive      Sensitivity = "sensitive"
)

const (
	MaxUserTags    = 10
	MaxTagLength   = 50
	publicTokenLen = 64
)

const publicTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Document is a user-owned uploaded file plus its metadata and
// classification state. Visibility, sensitivity and the analysis flag form
// the document's state machine; every transition is a method here so the
// invariants (sensitive implies private, token set once) live in one place.
type Document struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	SizeBytes    int64      `json:"size_bytes"`
	StorageDisk  string     `json:"storage_disk"`
	StoragePath  string     `json:"storage_path"`

	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Summary     string   `json:"summary,omitempty"`

	Sensitivity Sensitivity `json:"sensitivity,omitempty"`
	AIAnalyzed  bool        `json:"ai_analyzed"`

	Visibility       Visibility `json:"visibility"`
	PublicToken      string     `json:"public_token,omitempty"`
	PublicEnabledAt  *time.Time `json:"public_enabled_at,omitempty"`
	PublicDisabledAt *time.Time `json:"public_disabled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewDocument(id, ownerID, originalName, mimeType string, sizeBytes int64, storageDisk, storagePath string) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:           id,
		OwnerID:      ownerID,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    sizeBytes,
		StorageDisk:  storageDisk,
		StoragePath:  storagePath,
		Tags:         []string{},
		Visibility:   VisibilityPrivate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (d *Document) IsPublic() bool {
	return d.Visibility == VisibilityPublic && d.PublicToken != ""
}

func (d *Document) IsPrivate() bool {
	return d.Visibility == VisibilityPrivate
}

func (d *Document) IsSensitive() bool {
	return d.Sensitivity == SensitivitySensitive
}

func (d *Document) IsMaybeSensitive() bool {
	return d.Sensitivity == SensitivityMaybeSensitive
}

// Publish makes the document reachable via its public token. The token is
// generated on first publish only and survives later unpublish/publish
// cycles. Refuses sensitive documents regardless of what the caller's policy
// check concluded.
func (d *Document) Publish() error {
	if d.IsSensitive() {
		return WrapError(ErrSensitiveVisibility, "publish document", ErrForbidden)
	}
	if d.PublicToken == "" {
		token, err := generatePublicToken()
		if err != nil {
			return fmt.Errorf("generate public token: %w", err)
		}
		d.PublicToken = token
	}
	now := time.Now().UTC()
	d.Visibility = VisibilityPublic
	d.PublicEnabledAt = &now
	d.PublicDisabledAt = nil
	d.UpdatedAt = now
	return nil
}

// Unpublish makes the document private again. The token and enabled
// timestamp are left in place so a later republish reuses the same URL.
func (d *Document) Unpublish() {
	now := time.Now().UTC()
	d.Visibility = VisibilityPrivate
	d.PublicDisabledAt = &now
	d.UpdatedAt = now
}

// ApplyAnalysis records a completed analysis pass. User-authored title,
// description and tags are only overwritten when force is set or the field
// is still empty; the summary has no user-authored equivalent and is always
// refreshed. A sensitive verdict on a public document forces it private in
// the same state change so sensitive+public is never observable.
func (d *Document) ApplyAnalysis(result AnalysisResult, force bool) {
	now := time.Now().UTC()
	d.AIAnalyzed = true
	d.Sensitivity = result.Sensitivity

	if result.Summary != "" {
		d.Summary = result.Summary
	}
	if result.Title != "" && (force || d.Title == "") {
		d.Title = result.Title
	}
	if result.Description != "" && (force || d.Description == "") {
		d.Description = result.Description
	}
	if len(result.Tags) > 0 && (force || len(d.Tags) == 0) {
		d.Tags = result.Tags
	}

	if result.Sensitivity == SensitivitySensitive && d.IsPublic() {
		d.Visibility = VisibilityPrivate
		d.PublicDisabledAt = &now
	}
	d.UpdatedAt = now
}

// MarkAnalysisFailed is the terminal failure transition: the document counts
// as analyzed so it never blocks in pending, all other fields stay put.
func (d *Document) MarkAnalysisFailed() {
	d.AIAnalyzed = true
	d.UpdatedAt = time.Now().UTC()
}

// RequestReanalysis re-enters the pending state. Existing sensitivity and
// summary stay until the new analysis completes.
func (d *Document) RequestReanalysis() {
	d.AIAnalyzed = false
	d.UpdatedAt = time.Now().UTC()
}

func (d *Document) Extension() string {
	return strings.TrimPrefix(filepath.Ext(d.OriginalName), ".")
}

func (d *Document) FormattedSize() string {
	bytes := d.SizeBytes
	switch {
	case bytes < 1<<10:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(bytes)/(1<<10))
	case bytes < 1<<30:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1<<30))
	}
}

// PublicURL builds the canonical /p/{token} URL, or "" while private.
func (d *Document) PublicURL(baseURL string) string {
	if !d.IsPublic() {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/p/" + d.PublicToken
}

// SearchProjection is the flat record consumed by the full-text index.
type SearchProjection struct {
	DocumentID   string
	Title        string
	OriginalName string
	Description  string
	Summary      string
	TagsText     string
}

func (d *Document) SearchProjection() SearchProjection {
	return SearchProjection{
		DocumentID:   d.ID,
		Title:        d.Title,
		OriginalName: d.OriginalName,
		Description:  d.Description,
		Summary:      d.Summary,
		TagsText:     strings.Join(d.Tags, " "),
	}
}

func generatePublicToken() (string, error) {
	out := make([]byte, publicTokenLen)
	max := big.NewInt(int64(len(publicTokenAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = publicTokenAlphabet[n.Int64()]
	}
	return string(out), nil
}
