package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/fortyacres/property-chat/internal/chat"
	"github.com/fortyacres/property-chat/internal/database"
	"github.com/fortyacres/property-chat/internal/middleware"
	"github.com/fortyacres/property-chat/internal/models"
)

type PropertyHandler struct {
	db    *database.Database
	coord *chat.Coordinator
}

func NewPropertyHandler(db *database.Database, coord *chat.Coordinator) *PropertyHandler {
	return &PropertyHandler{db: db, coord: coord}
}

// ListProperties returns all listings, each with its live viewer count.
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	properties, err := h.db.ListProperties()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list properties"})
		return
	}

	result := lo.Map(properties, func(p models.Property, _ int) gin.H {
		resp := formatPropertyResponse(&p)
		resp["online_count"] = len(h.coord.Presence(p.ID))
		return resp
	})

	c.JSON(http.StatusOK, gin.H{"properties": result})
}

// GetProperty returns one listing with live viewers and recent investors.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	propertyID, ok := parsePropertyID(c)
	if !ok {
		return
	}

	property, err := h.db.GetProperty(propertyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	response := formatPropertyResponse(property)
	response["online_users"] = h.coord.Presence(property.ID)

	investments, err := h.db.GetPropertyInvestments(property.ID)
	if err == nil {
		response["investments"] = lo.Map(investments, func(inv models.Investment, _ int) gin.H {
			return gin.H{
				"id":         inv.ID,
				"user_id":    inv.UserID,
				"username":   inv.User.Username,
				"amount":     inv.Amount,
				"shares":     inv.Shares,
				"created_at": inv.CreatedAt,
			}
		})
	}

	c.JSON(http.StatusOK, response)
}

// CreateProperty creates a listing.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Address     string  `json:"address" binding:"required"`
		City        string  `json:"city"`
		State       string  `json:"state"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		TotalShares int     `json:"total_shares" binding:"required,gt=0"`
		ImageURL    string  `json:"image_url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property := &models.Property{
		Title:           req.Title,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		Description:     req.Description,
		Price:           req.Price,
		SharePrice:      req.Price / float64(req.TotalShares),
		TotalShares:     req.TotalShares,
		AvailableShares: req.TotalShares,
		ImageURL:        req.ImageURL,
		ListedBy:        userID,
		CreatedAt:       time.Now(),
	}

	if err := h.db.CreateProperty(property); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create property"})
		return
	}

	c.JSON(http.StatusCreated, formatPropertyResponse(property))
}

// UpdateProperty patches a listing and announces the change to the property's
// chat audience.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	propertyID, ok := parsePropertyID(c)
	if !ok {
		return
	}

	property, err := h.db.GetProperty(propertyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	if property.ListedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the lister can update a property"})
		return
	}

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		ImageURL    string  `json:"image_url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changedField := ""
	changedValue := ""
	if req.Title != "" {
		property.Title = req.Title
		changedField, changedValue = "title", req.Title
	}
	if req.Description != "" {
		property.Description = req.Description
		changedField, changedValue = "description", req.Description
	}
	if req.Price > 0 {
		property.Price = req.Price
		property.SharePrice = req.Price / float64(property.TotalShares)
		changedField, changedValue = "price", strconv.FormatFloat(req.Price, 'f', 2, 64)
	}
	if req.ImageURL != "" {
		property.ImageURL = req.ImageURL
		changedField, changedValue = "image_url", req.ImageURL
	}

	if err := h.db.UpdateProperty(property); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update property"})
		return
	}

	if changedField != "" {
		h.coord.AnnouncePropertyUpdate(property.ID, userID.String(), changedField, changedValue)
	}

	c.JSON(http.StatusOK, formatPropertyResponse(property))
}

// Invest records a share purchase and announces it to the property's chat.
func (h *PropertyHandler) Invest(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	propertyID, ok := parsePropertyID(c)
	if !ok {
		return
	}

	property, err := h.db.GetProperty(propertyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	var req struct {
		Shares int `json:"shares" binding:"required,gt=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	investment := &models.Investment{
		PropertyID: property.ID,
		UserID:     userID,
		Amount:     float64(req.Shares) * property.SharePrice,
		Shares:     req.Shares,
		CreatedAt:  time.Now(),
	}

	if err := h.db.RecordInvestment(investment); err != nil {
		if errors.Is(err, database.ErrNotEnoughShares) {
			c.JSON(http.StatusConflict, gin.H{"error": "not enough shares available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record investment"})
		return
	}

	userName := ""
	if user, err := h.db.GetUser(userID.String()); err == nil {
		userName = user.Username
	}
	h.coord.AnnounceInvestment(property.ID, userID.String(), userName, investment.Amount, investment.Shares)

	c.JSON(http.StatusCreated, gin.H{
		"id":          investment.ID,
		"property_id": investment.PropertyID,
		"amount":      investment.Amount,
		"shares":      investment.Shares,
		"created_at":  investment.CreatedAt,
	})
}

func parsePropertyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid property id %q", c.Param("id"))})
		return 0, false
	}
	return id, true
}

func formatPropertyResponse(p *models.Property) gin.H {
	return gin.H{
		"id":               p.ID,
		"title":            p.Title,
		"address":          p.Address,
		"city":             p.City,
		"state":            p.State,
		"description":      p.Description,
		"price":            p.Price,
		"share_price":      p.SharePrice,
		"total_shares":     p.TotalShares,
		"available_shares": p.AvailableShares,
		"image_url":        p.ImageURL,
		"listed_by":        p.ListedBy,
		"created_at":       p.CreatedAt,
	}
}
