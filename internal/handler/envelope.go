package handler

import (
	"reflect"
	"strings"
)

// Methods served by an entity's collection and item paths, as advertised in links.
const (
	CollectionMethods = "GET, POST"
	ItemMethods       = "GET, PUT, DELETE"
)

// Link is a hypermedia link to a related resource.
type Link struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

// Envelope wraps every successful response body.
//
//	{"data": ..., "_links": {"self": {...}, "artists": {...}}}
type Envelope struct {
	Data  interface{}     `json:"data"`
	Links map[string]Link `json:"_links"`
}

// NewEnvelope wraps data with the self link and a link to the entity collection.
func NewEnvelope(data interface{}, self Link, entity, collection string) Envelope {
	return Envelope{
		Data: data,
		Links: map[string]Link{
			"self": self,
			entity: {Href: collection, Method: CollectionMethods},
		},
	}
}

// Count reports how many records the envelope carries: the slice length,
// or 1 for a single record.
func (e Envelope) Count() int {
	if e.Data == nil {
		return 0
	}
	v := reflect.ValueOf(e.Data)
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 1
}

// Deleted is the body returned after a successful delete.
type Deleted struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// joinPath joins URL path parts with single slashes.
func joinPath(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			trimmed = append(trimmed, p)
		}
	}
	return "/" + strings.Join(trimmed, "/")
}
