package routes

import (
	"errors"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

var (
	// ErrInvalidQuery is returned when a query has no start, no goal and no
	// route tag, leaving nothing to bound the search.
	ErrInvalidQuery = errors.New("invalid route query: a route tag is required when neither start nor goal is given")

	// ErrUnknownNode is returned when a start or goal is not part of the graph
	ErrUnknownNode = model.ErrUnknownNode

	// ErrSearchBudgetExceeded is returned when a search expands more nodes
	// than allowed or runs past its deadline.
	ErrSearchBudgetExceeded = errors.New("route search budget exceeded")
)
