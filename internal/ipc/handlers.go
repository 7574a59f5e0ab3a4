package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/clipkeeper/internal/auth"
	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/settings"
)

const maxBodyBytes = 32 << 20

var errEmptyBody = errors.New("empty request body")

// ErrCredentialsRequired answers a sign-in without a username when no
// interactive prompt is available.
var ErrCredentialsRequired = errors.New("credentials required")

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	SignedIn bool `json:"signedIn"`
}

type FilesResponse struct {
	Files []models.RemoteFile `json:"files"`
}

type UploadResponse struct {
	Results []models.UploadResult `json:"results"`
}

type CopyRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type ShortcutRequest struct {
	Shortcut string `json:"shortcut"`
}

type ShortcutResponse struct {
	Shortcut string `json:"shortcut"`
}

type RemoveRequest struct {
	IDs []string `json:"ids"`
}

type RemoveResponse struct {
	Removed int `json:"removed"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail answers a domain failure as data.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn(r.Context(), "ipc request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusOK, common.NewEnvelope(err))
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, common.NewEnvelope(err))
}

// decode reads a JSON body into v. An empty body is accepted when
// optional is set.
func decode(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return errEmptyBody
		}
		return fmt.Errorf("malformed request: %w", err)
	}
	return nil
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{SignedIn: s.deps.Session.IsSignedIn()})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decode(r, &req, true); err != nil {
		badRequest(w, err)
		return
	}

	var err error
	switch {
	case req.Username != "" && s.deps.Login != nil:
		flow := auth.NewPasswordFlow(s.deps.Login, auth.StaticPrompter{Username: req.Username, Password: req.Password})
		err = s.deps.Session.SignInWith(r.Context(), flow)
	case s.deps.PromptSignIn:
		err = s.deps.Session.SignIn(r.Context())
	default:
		err = ErrCredentialsRequired
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SignedIn: true})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Session.SignOut(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SignedIn: false})
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.deps.Sync.ListFiles(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if files == nil {
		files = []models.RemoteFile{}
	}
	writeJSON(w, http.StatusOK, FilesResponse{Files: files})
}

func (s *Server) uploadToDrive(w http.ResponseWriter, r *http.Request) {
	var batch []clips.Clip
	if err := decode(r, &batch, false); err != nil {
		badRequest(w, err)
		return
	}

	results, err := s.deps.Sync.UploadClips(r.Context(), batch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Results: results})
}

func (s *Server) copyToClipboard(w http.ResponseWriter, r *http.Request) {
	var req CopyRequest
	if err := decode(r, &req, false); err != nil {
		badRequest(w, err)
		return
	}

	if err := s.deps.Clipboard.Copy(r.Context(), req.Type, req.Content); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (s *Server) changeShortcut(w http.ResponseWriter, r *http.Request) {
	var req ShortcutRequest
	if err := decode(r, &req, false); err != nil {
		badRequest(w, err)
		return
	}

	acc, err := s.deps.Shortcuts.Register(r.Context(), req.Shortcut, s.deps.OnShortcut)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if _, err := s.deps.Settings.Update(r.Context(), func(a *settings.AppSettings) {
		a.System.Shortcut = acc
	}); err != nil {
		s.fail(w, r, fmt.Errorf("save shortcut: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, ShortcutResponse{Shortcut: acc})
}

func (s *Server) listClips(w http.ResponseWriter, r *http.Request) {
	st := s.deps.Store.Snapshot()
	if st.Clips == nil {
		st.Clips = []clips.Clip{}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) removeClips(w http.ResponseWriter, r *http.Request) {
	var req RemoveRequest
	if err := decode(r, &req, false); err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemoveResponse{Removed: s.deps.Store.RemoveClips(req.IDs)})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Settings.Get())
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	next := s.deps.Settings.Get()
	if err := decode(r, &next, false); err != nil {
		badRequest(w, err)
		return
	}

	saved, err := s.deps.Settings.Replace(r.Context(), next)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
