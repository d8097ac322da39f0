package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	hcpdf "github.com/alnah/go-hcpdf"
)

// maxMultipartMemory is the in-memory share of a multipart body; the body
// limit applies to the whole body regardless.
const maxMultipartMemory = 1 << 20

// Request field names.
const (
	fieldURL          = "url"
	fieldHTML         = "html"
	fieldPDFOption    = "pdf_option"
	fieldWidth        = "w"
	fieldHeight       = "h"
	fieldWaitForReady = "wait_for_ready"
)

// errBodyTooLarge is returned when the body exceeds the configured limit.
var errBodyTooLarge = errors.New("request body too large")

// parseBody reads a POST body as form fields. Form encodings and JSON
// objects are accepted; JSON scalars are converted to their string form.
func parseBody(w http.ResponseWriter, r *http.Request, limit int64) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "application/json":
		return parseJSON(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, bodyError(err)
		}
		return r.PostForm, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		return r.PostForm, nil
	}
}

func parseJSON(r *http.Request) (url.Values, error) {
	var raw map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, bodyError(err)
	}

	values := make(url.Values, len(raw))
	for key, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			values.Set(key, v)
		case json.Number:
			values.Set(key, v.String())
		case bool:
			values.Set(key, strconv.FormatBool(v))
		default:
			return nil, fmt.Errorf("%w: field %q must be a string, number or boolean", hcpdf.ErrInvalidBody, key)
		}
	}
	return values, nil
}

// bodyError separates oversize bodies from malformed ones.
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return fmt.Errorf("%w: %v", hcpdf.ErrInvalidBody, err)
}

// urlRequest builds a URLRequest from query parameters and headers.
func urlRequest(r *http.Request) hcpdf.URLRequest {
	q := r.URL.Query()
	return hcpdf.URLRequest{
		URL:          strings.TrimSpace(q.Get(fieldURL)),
		PDFOption:    optionalField(q, fieldPDFOption),
		Width:        q.Get(fieldWidth),
		Height:       q.Get(fieldHeight),
		Cookies:      hcpdf.ParseCookieHeader(r.Header.Values("Cookie")),
		WaitForReady: parseFlag(q, fieldWaitForReady),
	}
}

// htmlRequest builds an HTMLRequest from parsed body fields.
func htmlRequest(values url.Values) hcpdf.HTMLRequest {
	return hcpdf.HTMLRequest{
		HTML:      values.Get(fieldHTML),
		PDFOption: optionalField(values, fieldPDFOption),
		Width:     values.Get(fieldWidth),
		Height:    values.Get(fieldHeight),
	}
}

// optionalField returns nil when key is absent, so an explicit empty value
// stays distinguishable from no value.
func optionalField(values url.Values, key string) *string {
	if !values.Has(key) {
		return nil
	}
	v := values.Get(key)
	return &v
}

// parseFlag treats a present key with an empty value, or any value
// strconv.ParseBool accepts as true, as set.
func parseFlag(values url.Values, key string) bool {
	if !values.Has(key) {
		return false
	}
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
