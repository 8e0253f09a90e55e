package artists

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"path/filepath"
	"strings"

	"bandhub/auth"
	"bandhub/filemgr"
	"bandhub/models"
	"bandhub/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

// Emitter publishes artist change events.
type Emitter interface {
	Emit(ctx context.Context, eventName string, content models.Index)
}

// Handler serves the artist routes.
type Handler struct {
	Store         Store
	Tokens        *auth.TokenManager
	Uploads       *filemgr.Uploader
	Events        Emitter
	Logger        zerolog.Logger
	PublicBaseURL string
}

type signupRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Genre    string `json:"genre"`
	Members  string `json:"members"`
	BandURL  string `json:"bandUrl"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// storeError maps a store failure to a response. Conflicts are store-level
// constraint violations and answer 500 like any other internal error.
func (h *Handler) storeError(w http.ResponseWriter, err error, op, id string) {
	if errors.Is(err, ErrNotFound) {
		utils.SendStatus(w, http.StatusNotFound)
		return
	}
	h.Logger.Error().Err(err).Str("op", op).Str("artist", id).Msg("store error")
	utils.SendStatus(w, http.StatusInternalServerError)
}

func (h *Handler) emit(ctx context.Context, eventName string, idx models.Index) {
	idx.EntityType = "artist"
	go h.Events.Emit(ctx, eventName, idx)
}

func Signup(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req signupRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "Username and password are required", http.StatusBadRequest)
			return
		}

		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			h.Logger.Error().Err(err).Str("username", req.Username).Msg("signup")
			utils.SendStatus(w, http.StatusInternalServerError)
			return
		}

		artist, err := h.Store.Create(r.Context(), &models.Artist{
			Name:     req.Name,
			Username: req.Username,
			Email:    req.Email,
			Password: hashed,
			City:     req.City,
			Country:  req.Country,
			Genre:    req.Genre,
			Members:  req.Members,
			BandURL:  req.BandURL,
		})
		if err != nil {
			h.storeError(w, err, "signup", req.Username)
			return
		}

		h.Logger.Info().Str("artist", artist.ID.Hex()).Str("username", artist.Username).Msg("artist signed up")
		h.emit(r.Context(), "artist-created", models.Index{EntityId: artist.ID.Hex(), Method: "POST"})
		utils.RespondWithJSON(w, http.StatusOK, artist)
	}
}

func Login(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req loginRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}

		artist, err := h.Store.FindByUsername(r.Context(), req.Username)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "username not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.storeError(w, err, "login", req.Username)
			return
		}

		if !auth.CheckPassword(req.Password, artist.Password) {
			http.Error(w, "password incorrect", http.StatusNotFound)
			return
		}

		token, err := h.Tokens.Issue(artist.Username)
		if err != nil {
			h.Logger.Error().Err(err).Msg("issue token")
			utils.SendStatus(w, http.StatusInternalServerError)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func GetArtistByID(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")
		artist, err := h.Store.FindByID(r.Context(), id)
		if err != nil {
			h.storeError(w, err, "get", id)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, artist)
	}
}

// GetArtistQRCode renders the artist's band URL as a PNG QR code.
func GetArtistQRCode(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")
		artist, err := h.Store.FindByID(r.Context(), id)
		if err != nil {
			h.storeError(w, err, "qrcode", id)
			return
		}
		if artist.BandURL == "" {
			http.Error(w, "Artist has no band URL", http.StatusNotFound)
			return
		}

		png, err := qrcode.Encode(artist.BandURL, qrcode.Medium, 256)
		if err != nil {
			h.Logger.Error().Err(err).Str("artist", id).Msg("qrcode")
			utils.SendStatus(w, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}

func UpdateArtist(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		var update models.ArtistUpdate
		if err := utils.DecodeJSON(r, &update); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}
		if update.Password != nil {
			hashed, err := auth.HashPassword(*update.Password)
			if err != nil {
				h.Logger.Error().Err(err).Str("artist", id).Msg("update password")
				utils.SendStatus(w, http.StatusInternalServerError)
				return
			}
			update.Password = &hashed
		}

		artist, err := h.Store.Update(r.Context(), id, update.Fields())
		if err != nil {
			h.storeError(w, err, "update", id)
			return
		}
		h.emit(r.Context(), "artist-updated", models.Index{EntityId: id, Method: "PUT"})
		utils.RespondWithJSON(w, http.StatusOK, artist)
	}
}

func UploadProfilePic(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := r.Context()
		id := ps.ByName("id")

		// The file is only written once the artist is known to exist.
		existing, err := h.Store.FindByID(ctx, id)
		if err != nil {
			h.storeError(w, err, "upload-profile-pic", id)
			return
		}

		filename, err := h.Uploads.SaveFormFile(w, r, existing.ID.Hex())
		if err != nil {
			h.uploadError(w, err)
			return
		}

		artist, err := h.Store.Update(ctx, id, map[string]any{"profilePicture": h.Uploads.PublicPath(filename)})
		if err != nil {
			h.Uploads.Remove(filename)
			h.storeError(w, err, "upload-profile-pic", id)
			return
		}

		// Only delete the replaced file once the update succeeded
		h.removeStoredPicture(existing.ProfilePicture)

		h.emit(ctx, "artist-picture-updated", models.Index{EntityId: id, Method: "PUT", ItemType: "profilePicture"})
		utils.RespondWithJSON(w, http.StatusOK, artist)
	}
}

func UploadBannerPic(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		var req struct {
			BannerPicture string `json:"bannerPicture"`
		}
		if err := utils.DecodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}

		artist, err := h.Store.Update(r.Context(), id, map[string]any{"bannerPicture": req.BannerPicture})
		if err != nil {
			h.storeError(w, err, "upload-banner-pic", id)
			return
		}
		h.emit(r.Context(), "artist-picture-updated", models.Index{EntityId: id, Method: "PUT", ItemType: "bannerPicture"})
		utils.RespondWithJSON(w, http.StatusOK, artist)
	}
}

func AddUpcomingEvent(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		var event models.Event
		if err := utils.DecodeJSON(r, &event); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}

		artist, err := h.Store.PushEvent(r.Context(), id, event)
		if err != nil {
			h.storeError(w, err, "push event", id)
			return
		}
		h.emit(r.Context(), "artist-event-added", models.Index{EntityId: id, Method: "PUT", ItemType: "event"})
		utils.RespondWithJSON(w, http.StatusOK, artist)
	}
}

func AddSong(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		var song models.Song
		if err := utils.DecodeJSON(r, &song); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}

		artist, err := h.Store.PushSong(r.Context(), id, song)
		if err != nil {
			h.storeError(w, err, "push song", id)
			return
		}
		h.emit(r.Context(), "artist-song-added", models.Index{EntityId: id, Method: "PUT", ItemType: "song"})
		utils.RespondWithJSON(w, http.StatusOK, artist)
	}
}

func DeleteArtistByID(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := r.Context()
		id := ps.ByName("id")

		existing, err := h.Store.FindByID(ctx, id)
		if err != nil {
			h.storeError(w, err, "delete", id)
			return
		}
		if err := h.Store.Delete(ctx, id); err != nil {
			h.storeError(w, err, "delete", id)
			return
		}
		h.removeStoredPicture(existing.ProfilePicture)

		h.emit(ctx, "artist-deleted", models.Index{EntityId: id, Method: "DELETE"})
		utils.SendStatus(w, http.StatusNoContent)
	}
}

// DeleteSong answers 204 whether or not a song matched.
func DeleteSong(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, songID := ps.ByName("id"), ps.ByName("songid")

		removed, err := h.Store.PullSong(r.Context(), id, songID)
		if err != nil {
			h.storeError(w, err, "pull song", id)
			return
		}
		if !removed {
			h.Logger.Debug().Str("artist", id).Str("song", songID).Msg("no song matched")
		} else {
			h.emit(r.Context(), "artist-song-removed", models.Index{EntityId: id, Method: "DELETE", ItemType: "song", ItemId: songID})
		}
		utils.SendStatus(w, http.StatusNoContent)
	}
}

// DeleteUpcomingEvent answers 204 whether or not an event matched.
func DeleteUpcomingEvent(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, eventID := ps.ByName("id"), ps.ByName("eventid")

		removed, err := h.Store.PullEvent(r.Context(), id, eventID)
		if err != nil {
			h.storeError(w, err, "pull event", id)
			return
		}
		if !removed {
			h.Logger.Debug().Str("artist", id).Str("event", eventID).Msg("no event matched")
		} else {
			h.emit(r.Context(), "artist-event-removed", models.Index{EntityId: id, Method: "DELETE", ItemType: "event", ItemId: eventID})
		}
		utils.SendStatus(w, http.StatusNoContent)
	}
}

// UploadPicture is the stand-alone upload check: it stores the picture and
// answers with an HTML snippet showing it.
func UploadPicture(h *Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		filename, err := h.Uploads.SaveFormFile(w, r, "upload")
		if err != nil {
			h.uploadError(w, err)
			return
		}

		src := html.EscapeString(h.PublicBaseURL + h.Uploads.PublicPath(filename))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "<h2>Here is the picture:</h2><img src='%s' alt='something'/>", src)
	}
}

func (h *Handler) uploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, filemgr.ErrInvalidExtension), errors.Is(err, filemgr.ErrNoFile):
		http.Error(w, "Please upload a valid image", http.StatusBadRequest)
	case errors.Is(err, filemgr.ErrFileTooLarge):
		http.Error(w, "Image too large", http.StatusBadRequest)
	default:
		h.Logger.Error().Err(err).Msg("store upload")
		utils.SendStatus(w, http.StatusInternalServerError)
	}
}

// removeStoredPicture deletes a previously uploaded file referenced by path.
// Paths not produced by the uploader are left alone.
func (h *Handler) removeStoredPicture(path string) {
	prefix := h.Uploads.PublicPath("")
	if path == "" || !strings.HasPrefix(path, prefix) {
		return
	}
	h.Uploads.Remove(filepath.Base(strings.TrimPrefix(path, prefix)))
}
