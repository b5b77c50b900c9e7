package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-picks/app/errs"
	"github.com/lysyi3m/rss-picks/app/match"
	"github.com/lysyi3m/rss-picks/app/pipeline"
)

func (h *Handler) BrowseAll(c *gin.Context) {
	h.serveFeed(c, pipeline.State{}, pipeline.FetchFeed(h.fetcher))
}

func (h *Handler) BrowseCategory(c *gin.Context) {
	category := c.Param("category")

	h.serveFeed(c, pipeline.State{},
		pipeline.FetchFeed(h.fetcher),
		pipeline.Match(func(pipeline.State) match.Predicate {
			return match.IntersectsAny([]string{category}, match.FieldCategories)
		}),
	)
}

func (h *Handler) BrowseCategories(c *gin.Context) {
	body, err := bindBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	categories, ok := listInput(c, body.Categories, "categories")
	if !ok {
		h.fail(c, errs.Malformed("no categories requested"))
		return
	}

	h.serveFeed(c, pipeline.State{},
		pipeline.FetchFeed(h.fetcher),
		pipeline.Match(func(pipeline.State) match.Predicate {
			return match.IntersectsAny(categories, match.FieldCategories)
		}),
	)
}

func (h *Handler) BrowseAuthor(c *gin.Context) {
	author := c.Param("author")

	h.serveFeed(c, pipeline.State{},
		pipeline.FetchFeed(h.fetcher),
		pipeline.Match(func(pipeline.State) match.Predicate {
			return match.Equals(author, match.FieldAuthor)
		}),
	)
}

func (h *Handler) BrowseAuthors(c *gin.Context) {
	body, err := bindBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	authors, ok := listInput(c, body.Authors, "authors")
	if !ok {
		h.fail(c, errs.Malformed("no authors requested"))
		return
	}

	h.serveFeed(c, pipeline.State{},
		pipeline.FetchFeed(h.fetcher),
		pipeline.Match(func(pipeline.State) match.Predicate {
			return match.AnyOf(authors, match.FieldAuthor)
		}),
	)
}
