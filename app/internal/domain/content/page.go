package content

import (
	"bytes"
	"encoding/json"
	"regexp"
	"time"
)

const HomePage = "home"

type Page struct {
	ID        int64
	Name      string
	Content   json.RawMessage
	UpdatedAt time.Time
}

var pageNameRegexp = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func ValidateName(name string) error {
	if !pageNameRegexp.MatchString(name) || len(name) > 64 {
		return ErrPageInvalidName
	}
	return nil
}

// ValidateContent accepts a JSON object only; the storefront reads pages as
// keyed sections.
func ValidateContent(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return ErrPageInvalidContent
	}
	return nil
}

var defaultHome = json.RawMessage(`{
  "hero": {
    "title": "Welcome to Our Platform",
    "subtitle": "Discover innovative solutions for your business needs"
  },
  "whyChooseUs": {
    "title": "Why Choose Us",
    "items": [
      {"title": "Quality Service", "description": "We deliver exceptional quality in everything we do"},
      {"title": "Expert Team", "description": "Our experienced team is here to support you"},
      {"title": "Customer Focus", "description": "Your success is our priority"}
    ]
  }
}`)

// DefaultHome is served until an editor saves a home page.
func DefaultHome() *Page {
	content := make(json.RawMessage, len(defaultHome))
	copy(content, defaultHome)
	return &Page{Name: HomePage, Content: content}
}
