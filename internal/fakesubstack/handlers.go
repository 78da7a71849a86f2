package fakesubstack

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/ma2za/substack.go/pkg/post"
)

// Draft is a draft as the fake stores and returns it.
type Draft struct {
	ID                      int64         `json:"id"`
	Type                    string        `json:"type"`
	Title                   string        `json:"title,omitempty"`
	DraftTitle              string        `json:"draft_title"`
	DraftSubtitle           string        `json:"draft_subtitle"`
	DraftBody               string        `json:"draft_body"`
	DraftBylines            []post.Byline `json:"draft_bylines"`
	Audience                string        `json:"audience"`
	WriteCommentPermissions string        `json:"write_comment_permissions"`
	SectionID               *int64        `json:"draft_section_id"`
	IsPublished             bool          `json:"is_published"`
	PostDate                *string       `json:"post_date"`

	// Sent records whether publishing emailed subscribers.
	Sent bool `json:"-"`
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/sign-in", s.handleSignIn).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.requireSession)

	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/user/profile/self", s.handleProfile).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleSettings).Methods(http.MethodGet)
	api.HandleFunc("/reader/posts", s.handleReaderPosts).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/category/public/{id:[0-9]+}/{kind}", s.handleCategory).Methods(http.MethodGet)

	api.HandleFunc("/publication/users", s.handlePublicationUsers).Methods(http.MethodGet)
	api.HandleFunc("/publication_launch_checklist", s.handleLaunchChecklist).Methods(http.MethodGet)
	api.HandleFunc("/publication/embed", s.handleEmbed).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions", s.handleSubscriptions).Methods(http.MethodGet)
	api.HandleFunc("/post_management/published", s.handlePublished).Methods(http.MethodGet)
	api.HandleFunc("/image", s.handleImage).Methods(http.MethodPost)

	api.HandleFunc("/drafts", s.handleListDrafts).Methods(http.MethodGet)
	api.HandleFunc("/drafts", s.handleCreateDraft).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{id:[0-9]+}", s.handleGetDraft).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{id:[0-9]+}", s.handleUpdateDraft).Methods(http.MethodPut)
	api.HandleFunc("/drafts/{id:[0-9]+}", s.handleDeleteDraft).Methods(http.MethodDelete)
	api.HandleFunc("/drafts/{id:[0-9]+}/prepublish", s.handlePrepublish).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{id:[0-9]+}/publish", s.handlePublish).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{id:[0-9]+}/schedule", s.handleSchedule).Methods(http.MethodPost)

	return r
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.signIns = append(s.signIns, r.URL.Query().Get("for_pub"))
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte("<html><body>Signed in</body></html>"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.RLock()
	ok := body.Email == s.Email && body.Password == s.Password
	token, userID := s.SessionToken, s.UserID
	s.mu.RUnlock()
	if !ok {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
	respondJSON(w, http.StatusOK, map[string]any{"id": userID, "email": body.Email})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]map[string]any, 0, len(s.Publications))
	for _, pub := range s.Publications {
		users = append(users, map[string]any{
			"id":             pub.ID * 100,
			"user_id":        s.UserID,
			"publication_id": pub.ID,
			"role":           "admin",
			"publication":    pub,
		})
	}
	profile := map[string]any{
		"id":               s.UserID,
		"name":             s.UserName,
		"handle":           strings.ToLower(s.UserName),
		"publicationUsers": users,
	}
	if len(s.Publications) > 0 {
		profile["primaryPublication"] = s.Publications[0]
	}
	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSettings(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	respondJSON(w, http.StatusOK, map[string]any{"email": s.Email, "email_notifications": true})
}

func (s *Server) handleReaderPosts(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"posts": []any{}, "more": false})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, []map[string]any{
		{"id": 96, "name": "Culture", "slug": "culture", "active": true},
		{"id": 4, "name": "Technology", "slug": "technology", "active": true},
	})
}

// handleCategory pages through CategoryPublications publications, 25 at a time.
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		respondError(w, http.StatusBadRequest, "Invalid page")
		return
	}
	const pageSize = 25

	s.mu.RLock()
	total := s.CategoryPublications
	s.mu.RUnlock()

	pubs := make([]map[string]any, 0, pageSize)
	for i := page * pageSize; i < total && i < (page+1)*pageSize; i++ {
		pubs = append(pubs, map[string]any{
			"id":        i + 1,
			"name":      fmt.Sprintf("Publication %d", i+1),
			"subdomain": fmt.Sprintf("pub%d", i+1),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"publications": pubs,
		"more":         (page+1)*pageSize < total,
	})
}

func (s *Server) handlePublicationUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	respondJSON(w, http.StatusOK, []map[string]any{
		{"id": s.UserID, "name": s.UserName, "role": "admin"},
	})
}

func (s *Server) handleLaunchChecklist(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	respondJSON(w, http.StatusOK, map[string]any{"subscriberCount": s.SubscriberCount})
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"url": target, "title": "Embedded page"})
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pubs := make([]map[string]any, 0, len(s.Publications)+1)
	// A subscription to somebody else's publication comes first.
	pubs = append(pubs, map[string]any{
		"id":       99,
		"hostname": "elsewhere.substack.com",
		"sections": []Section{{ID: 990, Name: "Other", Slug: "other"}},
	})
	for _, pub := range s.Publications {
		sections := pub.Sections
		if sections == nil {
			sections = []Section{}
		}
		pubs = append(pubs, map[string]any{"id": pub.ID, "hostname": pub.Hostname, "sections": sections})
	}
	respondJSON(w, http.StatusOK, map[string]any{"publications": pubs})
}

func (s *Server) handlePublished(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	published := s.sortedDrafts(func(d *Draft) bool { return d.IsPublished })
	total := len(published)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"posts":  published[offset:end],
		"offset": offset,
		"limit":  limit,
		"total":  total,
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form")
		return
	}
	image := r.PostForm.Get("image")
	if !strings.HasPrefix(image, "data:image/") && !strings.HasPrefix(image, "http") {
		respondError(w, http.StatusBadRequest, "Invalid image")
		return
	}

	s.mu.Lock()
	s.images = append(s.images, image)
	n := len(s.images)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"url":         fmt.Sprintf("https://substack-post-media.s3.amazonaws.com/public/images/%d.jpeg", n),
		"contentType": "image/jpeg",
		"bytes":       len(image),
	})
}

// Drafts returns every stored draft ordered by id.
func (s *Server) Drafts() []Draft {
	return s.sortedDrafts(func(*Draft) bool { return true })
}

// Draft returns a stored draft.
func (s *Server) Draft(id int64) (Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	if !ok {
		return Draft{}, false
	}
	return *d, true
}

// PutDraft stores d, assigning an id when it has none, and returns the id.
func (s *Server) PutDraft(d Draft) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		s.nextDraftID++
		d.ID = s.nextDraftID
	}
	if d.Type == "" {
		d.Type = "newsletter"
	}
	s.drafts[d.ID] = &d
	return d.ID
}

func (s *Server) sortedDrafts(keep func(*Draft) bool) []Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		if keep(d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keep := func(*Draft) bool { return true }
	if q.Get("filter") == "draft" {
		keep = func(d *Draft) bool { return !d.IsPublished }
	}
	drafts := s.sortedDrafts(keep)

	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset > len(drafts) {
		offset = len(drafts)
	}
	drafts = drafts[offset:]
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit < len(drafts) {
		drafts = drafts[:limit]
	}
	respondJSON(w, http.StatusOK, drafts)
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var envelope post.Draft
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if _, err := post.ParseBody(envelope.Body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid draft body")
		return
	}
	if len(envelope.Bylines) == 0 {
		respondError(w, http.StatusBadRequest, "A byline is required")
		return
	}

	id := s.PutDraft(Draft{
		DraftTitle:              envelope.Title,
		DraftSubtitle:           envelope.Subtitle,
		DraftBody:               envelope.Body,
		DraftBylines:            envelope.Bylines,
		Audience:                string(envelope.Audience),
		WriteCommentPermissions: string(envelope.CommentPermissions),
	})
	d, _ := s.Draft(id)
	respondJSON(w, http.StatusOK, d)
}

// draftFromPath returns the draft named by the path, answering 404 when missing.
func (s *Server) draftFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid draft ID")
		return 0, false
	}
	if _, ok := s.Draft(id); !ok {
		respondError(w, http.StatusNotFound, "Post not found")
		return 0, false
	}
	return id, true
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := s.draftFromPath(w, r)
	if !ok {
		return
	}
	d, _ := s.Draft(id)
	respondJSON(w, http.StatusOK, d)
}

// handleUpdateDraft merges the given fields into the stored draft.
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := s.draftFromPath(w, r)
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body, ok := fields["draft_body"]; ok {
		var encoded string
		if err := json.Unmarshal(body, &encoded); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid draft body")
			return
		}
		if _, err := post.ParseBody(encoded); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid draft body")
			return
		}
	}

	current, _ := s.Draft(id)
	merged := map[string]json.RawMessage{}
	b, _ := json.Marshal(current)
	_ = json.Unmarshal(b, &merged)
	for k, v := range fields {
		merged[k] = v
	}
	b, _ = json.Marshal(merged)
	var updated Draft
	if err := json.Unmarshal(b, &updated); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated.ID = id
	updated.Sent = current.Sent
	s.PutDraft(updated)
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := s.draftFromPath(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handlePrepublish(w http.ResponseWriter, r *http.Request) {
	id, ok := s.draftFromPath(w, r)
	if !ok {
		return
	}
	d, _ := s.Draft(id)
	var errs []string
	if d.DraftTitle == "" {
		errs = append(errs, "Title is required")
	}
	respondJSON(w, http.StatusOK, map[string]any{"errors": errs, "warnings": []string{}})
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := s.draftFromPath(w, r)
	if !ok {
		return
	}
	var body struct {
		Send               bool `json:"send"`
		ShareAutomatically bool `json:"share_automatically"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	d, _ := s.Draft(id)
	now := time.Now().UTC().Format(time.RFC3339)
	d.IsPublished = true
	d.PostDate = &now
	d.Title = d.DraftTitle
	d.Sent = body.Send
	s.PutDraft(d)
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.draftFromPath(w, r)
	if !ok {
		return
	}
	var body struct {
		PostDate *string `json:"post_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.PostDate != nil {
		if _, err := time.Parse(time.RFC3339, *body.PostDate); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid post_date")
			return
		}
	}

	d, _ := s.Draft(id)
	d.PostDate = body.PostDate
	s.PutDraft(d)
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "post_date": body.PostDate})
}
