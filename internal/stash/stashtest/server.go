// Package stashtest provides an in-memory Stash GraphQL server for tests.
package stashtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stashapp/stash/pkg/plugin/common"
)

// Image is a stored image
type Image struct {
	ID     string
	Path   string
	TagIDs []string
}

// Server answers the subset of the Stash GraphQL API the plugin uses
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	images   map[string]*Image
	tags     map[string]string
	nextTag  int
	settings map[string]map[string]interface{}
	updates  int
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// NewServer starts a server that is closed when the test ends
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		images:   make(map[string]*Image),
		tags:     make(map[string]string),
		nextTag:  100,
		settings: make(map[string]map[string]interface{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Connection returns plugin server connection details for the server
func (s *Server) Connection(t *testing.T) common.StashServerConnection {
	t.Helper()
	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatalf("bad server URL: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	return common.StashServerConnection{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Port:   port,
	}
}

// Endpoint returns the GraphQL endpoint URL
func (s *Server) Endpoint() string {
	return s.URL + "/graphql"
}

// AddImage stores an image with the given tag IDs
func (s *Server) AddImage(id, path string, tagIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[id] = &Image{ID: id, Path: path, TagIDs: tagIDs}
}

// AddTag stores a tag and returns its ID
func (s *Server) AddTag(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTag(name)
}

// SetPluginSettings stores the saved settings for a plugin
func (s *Server) SetPluginSettings(pluginID string, settings map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[pluginID] = settings
}

// ImageTags returns the names of an image's tags, sorted
func (s *Server) ImageTags(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[id]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(img.TagIDs))
	for _, tagID := range img.TagIDs {
		names = append(names, s.tags[tagID])
	}
	sort.Strings(names)
	return names
}

// TagID looks up a tag by exact name
func (s *Server) TagID(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.tags {
		if n == name {
			return id, true
		}
	}
	return "", false
}

// Updates counts imageUpdate mutations served
func (s *Server) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

func (s *Server) createTag(name string) string {
	s.nextTag++
	id := strconv.Itoa(s.nextTag)
	s.tags[id] = name
	return id
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	data, err := s.dispatch(req)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{{"message": err.Error()}},
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func (s *Server) dispatch(req request) (map[string]interface{}, error) {
	q := req.Query
	vars := req.Variables
	switch {
	case strings.Contains(q, "configuration"):
		plugins := map[string]interface{}{}
		for _, id := range stringList(vars["include"]) {
			if settings, ok := s.settings[id]; ok {
				plugins[id] = settings
			}
		}
		return map[string]interface{}{"configuration": map[string]interface{}{"plugins": plugins}}, nil

	case strings.Contains(q, "tagCreate"):
		input := object(vars["input"])
		name, _ := input["name"].(string)
		id := s.createTag(name)
		return map[string]interface{}{"tagCreate": map[string]interface{}{"id": id, "name": name}}, nil

	case strings.Contains(q, "findTags"):
		return s.findTags(object(object(vars["filter"])["name"]))

	case strings.Contains(q, "imageUpdate"):
		input := object(vars["input"])
		id, _ := input["id"].(string)
		img, ok := s.images[id]
		if !ok {
			return nil, fmt.Errorf("image %s not found", id)
		}
		img.TagIDs = stringList(input["tag_ids"])
		s.updates++
		return map[string]interface{}{"imageUpdate": map[string]interface{}{"id": id}}, nil

	case strings.Contains(q, "findImages"):
		return s.findImages(object(vars["filter"]), object(object(vars["image_filter"])["tags"]))

	case strings.Contains(q, "findImage"):
		id := fmt.Sprint(vars["id"])
		img, ok := s.images[id]
		if !ok {
			return map[string]interface{}{"findImage": nil}, nil
		}
		return map[string]interface{}{"findImage": s.imageJSON(img)}, nil
	}
	return nil, fmt.Errorf("unsupported operation: %s", q)
}

func (s *Server) findTags(criterion map[string]interface{}) (map[string]interface{}, error) {
	value, _ := criterion["value"].(string)
	modifier, _ := criterion["modifier"].(string)

	var match func(string) bool
	switch modifier {
	case "EQUALS":
		match = func(name string) bool { return strings.EqualFold(name, value) }
	case "MATCHES_REGEX":
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, err
		}
		match = re.MatchString
	default:
		match = func(string) bool { return true }
	}

	ids := make([]string, 0, len(s.tags))
	for id, name := range s.tags {
		if match(name) {
			ids = append(ids, id)
		}
	}
	sortNumeric(ids)

	tags := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, map[string]interface{}{"id": id, "name": s.tags[id]})
	}
	return map[string]interface{}{"findTags": map[string]interface{}{"count": len(tags), "tags": tags}}, nil
}

func (s *Server) findImages(filter, tagCriterion map[string]interface{}) (map[string]interface{}, error) {
	wanted := make(map[string]bool)
	for _, id := range stringList(tagCriterion["value"]) {
		wanted[id] = true
	}
	modifier, _ := tagCriterion["modifier"].(string)

	ids := make([]string, 0, len(s.images))
	for id, img := range s.images {
		hasAny := false
		for _, tagID := range img.TagIDs {
			if wanted[tagID] {
				hasAny = true
				break
			}
		}
		switch modifier {
		case "INCLUDES":
			if !hasAny {
				continue
			}
		case "EXCLUDES":
			if hasAny {
				continue
			}
		}
		ids = append(ids, id)
	}
	sortNumeric(ids)

	page, perPage := 1, len(ids)
	if v, ok := filter["page"].(float64); ok {
		page = int(v)
	}
	if v, ok := filter["per_page"].(float64); ok && v >= 0 {
		perPage = int(v)
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(ids) {
		start = len(ids)
	}
	if end > len(ids) {
		end = len(ids)
	}

	images := make([]map[string]interface{}, 0, end-start)
	for _, id := range ids[start:end] {
		images = append(images, s.imageJSON(s.images[id]))
	}
	return map[string]interface{}{"findImages": map[string]interface{}{"count": len(ids), "images": images}}, nil
}

func (s *Server) imageJSON(img *Image) map[string]interface{} {
	tags := make([]map[string]interface{}, 0, len(img.TagIDs))
	for _, id := range img.TagIDs {
		tags = append(tags, map[string]interface{}{"id": id, "name": s.tags[id]})
	}
	return map[string]interface{}{
		"id":    img.ID,
		"title": "",
		"paths": map[string]interface{}{"image": "/image/" + img.ID},
		"files": []map[string]interface{}{{"path": img.Path}},
		"tags":  tags,
	}
}

func object(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func sortNumeric(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
}
