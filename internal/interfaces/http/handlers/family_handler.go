package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seistrack/famview/internal/domain/catalog"
)

// FamilySummary is the list-view DTO of a family.
type FamilySummary struct {
	ID        catalog.FamilyID `json:"id"`
	Size      int              `json:"size"`
	Core      catalog.EventID  `json:"core"`
	Start     float64          `json:"start"`
	Longevity float64          `json:"longevity"`
}

// FamilyDetail adds the member list and member events.
type FamilyDetail struct {
	FamilySummary
	Members []catalog.EventID `json:"members"`
	Events  []*catalog.Event  `json:"events,omitempty"`
}

// FamilyHandler serves the family resource.
type FamilyHandler struct {
	families catalog.FamilyRepository
	events   catalog.EventRepository
}

// NewFamilyHandler creates the handler.
func NewFamilyHandler(families catalog.FamilyRepository, events catalog.EventRepository) *FamilyHandler {
	return &FamilyHandler{families: families, events: events}
}

// List serves GET /families.
func (h *FamilyHandler) List(c *gin.Context) {
	fams, err := h.families.ListFamilies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]FamilySummary, 0, len(fams))
	for _, fam := range fams {
		out = append(out, summaryOf(fam))
	}
	c.JSON(http.StatusOK, gin.H{"families": out, "total": len(out)})
}

// Get serves GET /families/:familyID, optionally embedding member events
// with ?events=true.
func (h *FamilyHandler) Get(c *gin.Context) {
	id, err := idParam(c, "familyID")
	if err != nil {
		respondError(c, err)
		return
	}

	fam, err := h.families.GetFamily(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	detail := FamilyDetail{FamilySummary: summaryOf(fam), Members: fam.Members}
	if c.Query("events") == "true" {
		evs, err := h.events.GetEvents(c.Request.Context(), fam.Members)
		if err != nil {
			respondError(c, err)
			return
		}
		detail.Events = evs
	}
	c.JSON(http.StatusOK, detail)
}

func summaryOf(fam *catalog.Family) FamilySummary {
	return FamilySummary{
		ID:        fam.ID,
		Size:      fam.Size(),
		Core:      fam.Core,
		Start:     fam.Start,
		Longevity: fam.Longevity,
	}
}
