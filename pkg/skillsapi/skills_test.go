package skillsapi

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-ai/skillet/pkg/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	client, err := New(
		WithRequestOptions(option.WithBaseURL(server.URL)),
		WithRetryConfig(config.RetryConfig{Attempts: 1}),
	)
	require.NoError(t, err)
	return client
}

func writeSkillPackage(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	manifest := "---\nname: " + name + "\ndescription: test package\n---\n\nbody\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "run.py"), []byte("pass\n"), 0o644))
	return dir
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestCreateSkill(t *testing.T) {
	var gotBeta, gotTitle string
	var gotFiles []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/skills", r.URL.Path)
		gotBeta = r.Header.Get("anthropic-beta")

		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotTitle = r.FormValue("display_title")
		for _, fh := range r.MultipartForm.File["files[]"] {
			// fh.Filename strips directories (Part.FileName applies
			// filepath.Base per RFC 7578); read the raw header to see the
			// path as sent.
			_, params, err := mime.ParseMediaType(fh.Header.Get("Content-Disposition"))
			require.NoError(t, err)
			gotFiles = append(gotFiles, params["filename"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":             "skill_abc123",
			"type":           "skill",
			"display_title":  "Financial Analyzer",
			"source":         "custom",
			"latest_version": "1",
			"created_at":     "2025-10-02T12:00:00Z",
			"updated_at":     "2025-10-02T12:00:00Z",
		})
	})

	client := newTestClient(t, handler)
	dir := writeSkillPackage(t, t.TempDir(), "financial-analyzer")

	created, err := client.CreateSkill(context.Background(), dir, "Financial Analyzer")
	require.NoError(t, err)

	assert.Equal(t, "skill_abc123", created.ID)
	assert.Equal(t, "custom", created.Source)
	assert.Equal(t, "1", created.LatestVersion)
	assert.Equal(t, BetaSkills, gotBeta)
	assert.Equal(t, "Financial Analyzer", gotTitle)
	assert.Contains(t, gotFiles, "financial-analyzer/SKILL.md")
	assert.Contains(t, gotFiles, "financial-analyzer/scripts/run.py")
}

func TestCreateSkillRequiresManifest(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := client.CreateSkill(context.Background(), t.TempDir(), "Empty")
	require.Error(t, err)
}

func TestListSkillsPagination(t *testing.T) {
	var requests []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/skills", r.URL.Path)
		require.Equal(t, "custom", r.URL.Query().Get("source"))
		requests = append(requests, r.URL.Query().Get("after_id"))

		w.Header().Set("Content-Type", "application/json")
		if len(requests) == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"id": "skill_1", "display_title": "One", "source": "custom"},
				},
				"has_more": true,
				"last_id":  "skill_1",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "skill_2", "display_title": "Two", "source": "custom"},
			},
			"has_more": false,
		})
	})

	client := newTestClient(t, handler)
	skills, err := client.ListSkills(context.Background(), "custom")
	require.NoError(t, err)

	require.Len(t, skills, 2)
	assert.Equal(t, "skill_1", skills[0].ID)
	assert.Equal(t, "skill_2", skills[1].ID)
	assert.Equal(t, []string{"", "skill_1"}, requests)
}

func TestGetSkill(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/skills/skill_abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "skill_abc", "display_title": "Thing", "latest_version": "3",
		})
	})

	client := newTestClient(t, handler)
	s, err := client.GetSkill(context.Background(), "skill_abc")
	require.NoError(t, err)
	assert.Equal(t, "3", s.LatestVersion)
}

func TestDeleteSkillRemovesVersionsFirst(t *testing.T) {
	var calls []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"skill_id": "skill_x", "version": "1"},
					{"skill_id": "skill_x", "version": "2"},
				},
				"has_more": false,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "skill_x"})
	})

	client := newTestClient(t, handler)
	deleted, err := client.DeleteSkill(context.Background(), "skill_x", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, deleted)
	assert.Equal(t, []string{
		"GET /v1/skills/skill_x/versions",
		"DELETE /v1/skills/skill_x/versions/1",
		"DELETE /v1/skills/skill_x/versions/2",
		"DELETE /v1/skills/skill_x",
	}, calls)
}

func TestGetVersionResolvesLatest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/skills/skill_y":
			json.NewEncoder(w).Encode(map[string]any{"id": "skill_y", "latest_version": "7"})
		case "/v1/skills/skill_y/versions/7":
			json.NewEncoder(w).Encode(map[string]any{
				"skill_id": "skill_y", "version": "7", "name": "resolved", "description": "d",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	client := newTestClient(t, handler)
	v, err := client.GetVersion(context.Background(), "skill_y", "latest")
	require.NoError(t, err)
	assert.Equal(t, "7", v.Version)
	assert.Equal(t, "resolved", v.Name)
}

func TestCreateVersion(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/skills/skill_z/versions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Empty(t, r.FormValue("display_title"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"skill_id": "skill_z", "version": "2", "created_at": "2025-10-03T00:00:00Z",
		})
	})

	client := newTestClient(t, handler)
	dir := writeSkillPackage(t, t.TempDir(), "revised")

	v, err := client.CreateVersion(context.Background(), "skill_z", dir)
	require.NoError(t, err)
	assert.Equal(t, "2", v.Version)
}

func TestRetryOnServerError(t *testing.T) {
	var attempts int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{
				"type": "error", "error": map[string]any{"type": "api_error", "message": "boom"},
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "skill_ok"})
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	client, err := New(
		WithRequestOptions(option.WithBaseURL(server.URL)),
		WithRetryConfig(config.RetryConfig{Attempts: 3, InitialDelay: 1, MaxDelay: 5, BackoffType: "fixed"}),
	)
	require.NoError(t, err)

	s, err := client.GetSkill(context.Background(), "skill_ok")
	require.NoError(t, err)
	assert.Equal(t, "skill_ok", s.ID)
	assert.Equal(t, 3, attempts)
}

func TestNoRetryOnClientError(t *testing.T) {
	var attempts int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error", "error": map[string]any{"type": "not_found_error", "message": "no such skill"},
		})
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	client, err := New(
		WithRequestOptions(option.WithBaseURL(server.URL)),
		WithRetryConfig(config.RetryConfig{Attempts: 3, InitialDelay: 1, MaxDelay: 5, BackoffType: "fixed"}),
	)
	require.NoError(t, err)

	_, err = client.GetSkill(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
