package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/lysyi3m/rss-picks/app/auth"
	"github.com/lysyi3m/rss-picks/app/errs"
	"github.com/lysyi3m/rss-picks/app/feed"
	"github.com/lysyi3m/rss-picks/app/pipeline"
)

func NewHandler(deps Deps) *Handler {
	return &Handler{
		verifier:      deps.Verifier,
		accounts:      deps.Accounts,
		users:         deps.Users,
		prefs:         deps.Preferences,
		fetcher:       deps.Fetcher,
		generator:     deps.Generator,
		configCache:   deps.Configs,
		statuses:      deps.Statuses,
		defaultSource: deps.DefaultSource,
		version:       deps.Version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if userCount, err := h.users.GetUserCount(c.Request.Context()); err == nil {
		health["users"] = userCount
	} else {
		slog.Error("Database error", "operation", "count_users", "error", err)
		health["status"] = "degraded"
	}

	health["loaded_sources"] = h.configCache.GetConfigCount()
	health["default_source"] = h.defaultSource
	health["sources"] = h.statuses.All()

	c.JSON(http.StatusOK, health)
}

// bindBody reads the optional JSON body. An empty body is not an error.
func bindBody(c *gin.Context) (requestBody, error) {
	var body requestBody
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return body, nil
	}

	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil && !errors.Is(err, io.EOF) {
		return body, errs.Malformed("invalid request body")
	}
	return body, nil
}

// credential takes HTTP Basic credentials first and falls back to the body.
func credential(c *gin.Context, body requestBody) auth.Credential {
	if username, password, ok := c.Request.BasicAuth(); ok {
		return auth.Credential{Username: username, Secret: password}
	}
	return auth.Credential{Username: body.Username, Secret: body.Password}
}

// listInput returns the list under key from the body or the query string.
// A missing key is reported with ok == false; an empty list is valid input.
func listInput(c *gin.Context, fromBody []string, key string) ([]string, bool) {
	if fromBody != nil {
		return fromBody, true
	}
	return c.GetQueryArray(key)
}

func nameInput(c *gin.Context, body requestBody) string {
	if body.Name != "" {
		return body.Name
	}
	return c.Query("name")
}

func (h *Handler) respond(c *gin.Context, status int, payload any) {
	c.Set(envelopeStatusKey, status)
	c.JSON(status, Envelope{Status: status, Response: payload})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := errs.Status(err)
	message := errs.Message(err)

	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "route", c.FullPath(), "error", err)
	} else {
		slog.Debug("Request rejected", "route", c.FullPath(), "status", status, "error", err)
	}

	httpStatus := status
	if status == errs.StatusDuplicateIdentity {
		httpStatus = http.StatusConflict
	}

	c.Set(envelopeStatusKey, status)
	c.JSON(httpStatus, Envelope{Status: status, Error: &message})
}

// serveFeed runs the stages for a feed-returning endpoint and renders the
// surviving items as JSON or, with ?format=rss, as an RSS document.
func (h *Handler) serveFeed(c *gin.Context, initial pipeline.State, stages ...pipeline.Stage) {
	initial.SourceName = c.DefaultQuery("source", h.defaultSource)

	state, err := pipeline.Run(c.Request.Context(), initial, stages...)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := state.Items
	if items == nil {
		items = []feed.Item{}
	}

	if c.Query("format") != "rss" {
		h.respond(c, http.StatusOK, items)
		return
	}

	channel := feed.Channel{SelfPath: c.Request.URL.RequestURI()}
	if state.Metadata != nil {
		channel.Title = state.Metadata.Title
		channel.Link = state.Metadata.Link
		channel.Description = state.Metadata.Description
		channel.Language = state.Metadata.Language
	}

	rss, err := h.generator.Run(channel, items)
	if err != nil {
		slog.Error("RSS generation error", "source", state.SourceName, "error", err)
		h.fail(c, err)
		return
	}

	c.Set(envelopeStatusKey, http.StatusOK)
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.Header("X-Feed-Name", state.SourceName)
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
