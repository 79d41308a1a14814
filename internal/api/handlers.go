package api

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"linknorm/internal/linkextract"
	"linknorm/internal/models"
	"linknorm/internal/storage"
	"linknorm/internal/urlutil"
)

// Handlers holds dependencies for the API handlers.
type Handlers struct {
	store storage.Storer
	opts  urlutil.Options
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(store storage.Storer, opts urlutil.Options) *Handlers {
	return &Handlers{store: store, opts: opts}
}

func generateID(prefix string) string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return prefix + time.Now().UTC().Format("20060102150405")
	}
	return prefix + hex.EncodeToString(b)
}

// CreateTarget registers a URL: the input is normalized to its canonical
// key, deduplicated against existing targets and recorded as a sighting.
func (h *Handlers) CreateTarget(w http.ResponseWriter, r *http.Request) {
	var reqBody struct {
		URL    string `json:"url"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(reqBody.URL) == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	canonicalURL := urlutil.Normalize(reqBody.URL, h.opts)
	host, ok := urlutil.NormalizedHostname(reqBody.URL, h.opts.NormalizeAMP, h.opts.StripLangSubdomains)
	if !ok {
		http.Error(w, "url has no usable host", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	target := &models.Target{
		ID:           generateID("t_"),
		URL:          reqBody.URL,
		CanonicalURL: canonicalURL,
		Host:         host,
		CreatedAt:    now,
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	var keyPtr *string
	if idempotencyKey != "" {
		keyPtr = &idempotencyKey
	}

	createdTarget, err := h.store.UpsertTarget(r.Context(), target, keyPtr)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		log.Printf("error creating target: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sighting := &models.Sighting{
		TargetID: createdTarget.ID,
		RawURL:   reqBody.URL,
		Source:   reqBody.Source,
		SeenAt:   now,
	}
	if err := h.store.RecordSighting(r.Context(), sighting); err != nil {
		log.Printf("error recording sighting: %v", err)
	}

	statusCode := http.StatusCreated
	if errors.Is(err, storage.ErrDuplicateKey) {
		statusCode = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(createdTarget)
}

// Normalize runs the pipeline without touching storage: it returns the
// canonical key, the structured components, the normalized hostname and the
// AMP verdict for a single URL.
func (h *Handlers) Normalize(w http.ResponseWriter, r *http.Request) {
	var reqBody struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(reqBody.URL) == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	resp := struct {
		Canonical string `json:"canonical"`
		Hostname  string `json:"hostname,omitempty"`
		IsAMP     bool   `json:"is_amp"`
		Scheme    string `json:"scheme"`
		Host      string `json:"host"`
		Path      string `json:"path"`
		Query     string `json:"query"`
		Fragment  string `json:"fragment"`
	}{
		Canonical: urlutil.Normalize(reqBody.URL, h.opts),
		IsAMP:     urlutil.IsAMPURL(reqBody.URL),
	}
	resp.Hostname, _ = urlutil.NormalizedHostname(reqBody.URL, h.opts.NormalizeAMP, h.opts.StripLangSubdomains)
	if parts, err := urlutil.NormalizeSplit(reqBody.URL, h.opts); err == nil {
		resp.Scheme = parts.Scheme
		resp.Host = parts.Host
		resp.Path = parts.Path
		resp.Query = parts.Query
		resp.Fragment = parts.Fragment
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ExtractLinks pulls the <a href> links out of an HTML document and returns
// them normalized and deduplicated. Nothing is stored.
func (h *Handlers) ExtractLinks(w http.ResponseWriter, r *http.Request) {
	var reqBody struct {
		HTML    string `json:"html"`
		BaseURL string `json:"base_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if reqBody.BaseURL == "" {
		http.Error(w, "base_url is required", http.StatusBadRequest)
		return
	}

	links, err := linkextract.Extract(strings.NewReader(reqBody.HTML), reqBody.BaseURL, h.opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if links == nil {
		links = []linkextract.Link{}
	}

	resp := struct {
		Items []linkextract.Link `json:"items"`
	}{Items: links}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListTargets handles listing targets with pagination.
func (h *Handlers) ListTargets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	// host filter (case-insensitive)
	host := strings.ToLower(strings.TrimSpace(q.Get("host")))

	var afterTime time.Time
	var afterID string
	if token := q.Get("page_token"); token != "" {
		// token is base64 of "<rfc3339nano>|<id>"
		if decoded, err := base64.URLEncoding.DecodeString(token); err == nil {
			parts := strings.SplitN(string(decoded), "|", 2)
			if len(parts) == 2 {
				if t, err := time.Parse(time.RFC3339Nano, parts[0]); err == nil {
					afterTime = t
					afterID = parts[1]
				}
			}
		}
	}

	items, err := h.store.ListTargets(r.Context(), storage.ListTargetsParams{
		Host:      host,
		AfterTime: afterTime,
		AfterID:   afterID,
		Limit:     limit,
	})
	if err != nil {
		log.Printf("list targets error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := struct {
		Items         []models.Target `json:"items"`
		NextPageToken string          `json:"next_page_token"`
	}{
		Items: items,
	}

	if len(items) == limit {
		last := items[len(items)-1]
		cursor := last.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + last.ID
		resp.NextPageToken = base64.URLEncoding.EncodeToString([]byte(cursor))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListSightings handles listing sightings of a target.
func (h *Handlers) ListSightings(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("target_id")

	// ensure target exists
	if _, err := h.store.GetTargetByID(r.Context(), targetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "target not found", http.StatusNotFound)
			return
		}
		log.Printf("get target error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	limit := 100
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	var sincePtr *time.Time
	if s := q.Get("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			utc := t.UTC()
			sincePtr = &utc
		}
	}

	sightings, err := h.store.ListSightingsByTargetID(r.Context(), storage.ListSightingsParams{
		TargetID: targetID,
		Since:    sincePtr,
		Limit:    limit,
	})
	if err != nil {
		log.Printf("list sightings error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := struct {
		Items []models.Sighting `json:"items"`
	}{Items: sightings}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Healthz is a simple health check endpoint.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
