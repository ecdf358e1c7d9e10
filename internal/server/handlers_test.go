package server

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/spotwidget/internal/models"
	"github.com/desertthunder/spotwidget/internal/services"
	"github.com/desertthunder/spotwidget/internal/tasks"
	tu "github.com/desertthunder/spotwidget/internal/testing"
	json "github.com/goccy/go-json"
)

func newHandlers(t *testing.T) (*Handlers, *tu.FakeSpotify) {
	t.Helper()
	fake := tu.NewFakeSpotify(t)
	spotify := services.NewSpotifyService(services.SpotifyOpts{BaseURL: fake.BaseURL()})
	return NewHandlers(tasks.NewInstallEngine(spotify, nil), spotify, nil), fake
}

func decodeResult(t *testing.T, resp *Response) models.Result {
	t.Helper()
	if resp.Status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Status)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON content type, got %q", resp.Header.Get("Content-Type"))
	}
	var result models.Result
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		t.Fatalf("failed to decode %s: %v", resp.Body, err)
	}
	return result
}

func TestHandlers(t *testing.T) {
	ctx := context.Background()

	t.Run("Routes order", func(t *testing.T) {
		h, _ := newHandlers(t)
		routes := h.Routes()
		want := []string{RouteInstall, RouteAccountMetadata, RouteHealth}
		for i, rt := range routes {
			if rt.Name != want[i] {
				t.Errorf("route %d = %s, want %s", i, rt.Name, want[i])
			}
		}
		if !routes[0].Root {
			t.Error("expected install to be a root route")
		}
	})

	t.Run("Install", func(t *testing.T) {
		t.Run("logout", func(t *testing.T) {
			h, fake := newHandlers(t)
			body := `{"install": {"id": 9007199254740993, "options": {"widgets": [{"playlist": {"URI": "x"}}]}}, "metadata": {"newValue": false}}`

			resp := h.Install(ctx, &Request{Method: http.MethodPost, Path: "/", Body: []byte(body)})
			result := decodeResult(t, resp)
			if !result.Proceed {
				t.Fatalf("expected proceed, got %+v", result.Errors)
			}
			if v, _ := result.Install.WidgetChoice(0, models.KindPlaylist); v != "custom" {
				t.Errorf("expected custom, got %q", v)
			}
			if !strings.Contains(string(resp.Body), `"id":9007199254740993`) {
				t.Errorf("expected large number preserved, got %s", resp.Body)
			}
			if len(fake.Requests()) != 0 {
				t.Error("expected no upstream calls")
			}
		})

		t.Run("login", func(t *testing.T) {
			h, fake := newHandlers(t)
			fake.Stub("/v1/me/playlists", tu.Playlists(t, [2]string{"Mix", "spotify:playlist:m"}))
			fake.Stub("/v1/me/following", tu.Artists(t, [2]string{"Björk", "spotify:artist:b"}))

			body := `{"install": {}, "metadata": {"newValue": true}, "authentications": {"account": {"token": {"type": "Bearer", "token": "t"}}}}`
			result := decodeResult(t, h.Install(ctx, &Request{Body: []byte(body)}))
			if !result.Proceed {
				t.Fatalf("expected proceed, got %+v", result.Errors)
			}
			if result.Install.ChoiceSchema(models.KindArtist).Name("spotify:artist:b") != "Björk" {
				t.Error("expected artist choice")
			}
		})

		t.Run("undecodable body", func(t *testing.T) {
			h, _ := newHandlers(t)
			result := decodeResult(t, h.Install(ctx, &Request{Body: []byte(`{not json`)}))
			if result.Proceed || result.Errors[0].Type != models.ErrorTypeInvalidRequest {
				t.Errorf("expected invalid-request, got %+v", result)
			}
		})

		t.Run("oversized body", func(t *testing.T) {
			h, _ := newHandlers(t)
			result := decodeResult(t, h.Install(ctx, &Request{Body: make([]byte, MaxBodyBytes+1)}))
			if result.Proceed || result.Errors[0].Type != models.ErrorTypeInvalidRequest {
				t.Errorf("expected invalid-request, got %+v", result)
			}
		})
	})

	t.Run("AccountMetadata", func(t *testing.T) {
		t.Run("success", func(t *testing.T) {
			h, fake := newHandlers(t)
			fake.Stub("/v1/me", tu.JSON(t, map[string]string{"id": "u1", "display_name": "User One", "email": "one@example.com"}))

			resp := h.AccountMetadata(ctx, &Request{Header: http.Header{"Authorization": {"Bearer abc"}}})
			var out models.AccountResult
			if err := json.Unmarshal(resp.Body, &out); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			want := models.AccountMetadata{Email: "one@example.com", Username: "User One", UserID: "u1"}
			if out.Metadata != want {
				t.Errorf("metadata = %+v, want %+v", out.Metadata, want)
			}
			if got := fake.Requests()[0].Header.Get("Authorization"); got != "Bearer abc" {
				t.Errorf("expected header forwarded, got %q", got)
			}
		})

		t.Run("username falls back to id", func(t *testing.T) {
			h, fake := newHandlers(t)
			fake.Stub("/v1/me", tu.JSON(t, map[string]string{"id": "u2"}))

			resp := h.AccountMetadata(ctx, &Request{Header: http.Header{}})
			if !strings.Contains(string(resp.Body), `"username":"u2"`) {
				t.Errorf("unexpected body %s", resp.Body)
			}
		})

		t.Run("upstream rejects token", func(t *testing.T) {
			h, fake := newHandlers(t)
			fake.Stub("/v1/me", tu.StubResponse{
				Status: http.StatusUnauthorized,
				Body:   `{"error": {"status": 401, "message": "Invalid access token"}}`,
			})

			result := decodeResult(t, h.AccountMetadata(ctx, &Request{Header: http.Header{"Authorization": {"Bearer bad"}}}))
			if result.Proceed || len(result.Errors) != 1 {
				t.Fatalf("expected one error, got %+v", result)
			}
			if result.Errors[0].Type != models.ErrorTypeUpstream {
				t.Errorf("expected type 400, got %s", result.Errors[0].Type)
			}
			if !strings.Contains(result.Errors[0].Message, "Invalid access token") {
				t.Errorf("expected upstream error in message, got %s", result.Errors[0].Message)
			}
		})

		t.Run("network failure", func(t *testing.T) {
			h, fake := newHandlers(t)
			fake.Stub("/v1/me", tu.StubResponse{Hijack: true})

			result := decodeResult(t, h.AccountMetadata(ctx, &Request{Header: http.Header{}}))
			if result.Proceed || result.Errors[0].Type != models.ErrorTypeUpstream {
				t.Errorf("expected type 400, got %+v", result)
			}
		})
	})

	t.Run("Health", func(t *testing.T) {
		h, _ := newHandlers(t)
		resp := h.Health(ctx, &Request{})
		if resp.Status != http.StatusOK || len(resp.Body) != 0 {
			t.Errorf("expected empty 200, got %+v", resp)
		}
	})

	t.Run("JSONResponse encode failure", func(t *testing.T) {
		resp := JSONResponse(map[string]any{"bad": make(chan int)})
		result := decodeResult(t, resp)
		if result.Proceed || result.Errors[0].Type != models.ErrorTypeInternal {
			t.Errorf("expected 500 result, got %+v", result)
		}
	})
}
