package api

import (
	"cmp"
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-picks/app/auth"
	"github.com/lysyi3m/rss-picks/app/database"
	"github.com/lysyi3m/rss-picks/app/errs"
	"github.com/lysyi3m/rss-picks/app/match"
	"github.com/lysyi3m/rss-picks/app/pipeline"
)

// authenticate binds the body and verifies the caller. Every /user endpoint
// except registration goes through here first.
func (h *Handler) authenticate(c *gin.Context) (auth.Identity, requestBody, error) {
	body, err := bindBody(c)
	if err != nil {
		return auth.Identity{}, body, err
	}

	state, err := pipeline.Run(c.Request.Context(),
		pipeline.State{Credential: credential(c, body)},
		pipeline.Authenticate(h.verifier),
	)
	if err != nil {
		return auth.Identity{}, body, err
	}

	return *state.Identity, body, nil
}

func (h *Handler) Login(c *gin.Context) {
	identity, _, err := h.authenticate(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusOK, gin.H{"user_id": identity.UserID})
}

func (h *Handler) Register(c *gin.Context) {
	body, err := bindBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	identity, err := h.accounts.Register(c.Request.Context(), credential(c, body))
	if err != nil {
		h.fail(c, err)
		return
	}

	slog.Info("User registered", "user_id", identity.UserID)
	h.respond(c, http.StatusCreated, gin.H{"user_id": identity.UserID})
}

func (h *Handler) GetProfile(c *gin.Context) {
	body, err := bindBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	state, err := pipeline.Run(c.Request.Context(),
		pipeline.State{Credential: credential(c, body)},
		pipeline.Authenticate(h.verifier),
		pipeline.LoadPreferences(h.prefs, pipeline.PreferenceSelection{Authors: true, Categories: true}),
	)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusOK, gin.H{
		"user_id":    state.Identity.UserID,
		"authors":    nonNil(state.Authors),
		"categories": nonNil(state.Categories),
	})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	identity, body, err := h.authenticate(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.accounts.ChangeSecret(c.Request.Context(), identity, cmp.Or(body.NewPassword, body.NewPasswordCompat)); err != nil {
		h.fail(c, err)
		return
	}

	slog.Info("Password changed", "user_id", identity.UserID)
	h.respond(c, http.StatusOK, gin.H{"user_id": identity.UserID})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	identity, _, err := h.authenticate(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), identity); err != nil {
		h.fail(c, err)
		return
	}

	slog.Info("User deleted", "user_id", identity.UserID)
	h.respond(c, http.StatusOK, gin.H{"user_id": identity.UserID})
}

func (h *Handler) UserFeed(c *gin.Context) {
	h.serveUserFeed(c, pipeline.PreferenceSelection{Authors: true, Categories: true}, pipeline.PersonalFeed)
}

func (h *Handler) UserAuthorFeed(c *gin.Context) {
	h.serveUserFeed(c, pipeline.PreferenceSelection{Authors: true}, pipeline.FavoriteAuthors)
}

func (h *Handler) UserCategoryFeed(c *gin.Context) {
	h.serveUserFeed(c, pipeline.PreferenceSelection{Categories: true}, pipeline.FavoriteCategories)
}

func (h *Handler) serveUserFeed(c *gin.Context, sel pipeline.PreferenceSelection, build func(pipeline.State) match.Predicate) {
	body, err := bindBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.serveFeed(c, pipeline.State{Credential: credential(c, body)},
		pipeline.Authenticate(h.verifier),
		pipeline.LoadPreferences(h.prefs, sel),
		pipeline.FetchFeed(h.fetcher),
		pipeline.Match(build),
	)
}

func (h *Handler) AddAuthor(c *gin.Context) {
	h.addPreference(c, h.prefs.AddAuthor)
}

func (h *Handler) AddCategory(c *gin.Context) {
	h.addPreference(c, h.prefs.AddCategory)
}

func (h *Handler) RemoveAuthor(c *gin.Context) {
	h.removePreference(c, h.prefs.RemoveAuthor)
}

func (h *Handler) RemoveCategory(c *gin.Context) {
	h.removePreference(c, h.prefs.RemoveCategory)
}

type preferenceOp func(ctx context.Context, userID, name string) (int64, error)

func (h *Handler) addPreference(c *gin.Context, add preferenceOp) {
	identity, body, err := h.authenticate(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	name := nameInput(c, body)
	if name == "" {
		h.fail(c, errs.Malformed("no name given"))
		return
	}

	id, err := add(c.Request.Context(), identity.UserID, name)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusCreated, gin.H{"id": id, "name": name})
}

func (h *Handler) removePreference(c *gin.Context, remove preferenceOp) {
	identity, body, err := h.authenticate(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	name := nameInput(c, body)
	if name == "" {
		h.fail(c, errs.Malformed("no name given"))
		return
	}

	removed, err := remove(c.Request.Context(), identity.UserID, name)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.respond(c, http.StatusOK, gin.H{"removed": removed})
}

func nonNil(prefs []database.Preference) []database.Preference {
	if prefs == nil {
		return []database.Preference{}
	}
	return prefs
}
