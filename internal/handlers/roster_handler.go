package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ArowuTest/prizedraw-backend/internal/services"
	"github.com/ArowuTest/prizedraw-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

const maxRosterUpload = 8 << 20 // 8 MiB

// RosterHandler handles roster import and read-back
type RosterHandler struct {
	drawService services.DrawService
}

// NewRosterHandler creates a new RosterHandler
func NewRosterHandler(drawService services.DrawService) *RosterHandler {
	return &RosterHandler{drawService: drawService}
}

// ReplaceRosterRequest accepts either a list of names or pasted text with one
// name per line. Both may be sent; they are concatenated.
type ReplaceRosterRequest struct {
	Names []string `json:"names"`
	Text  string   `json:"text"`
}

// GetRoster handles GET /roster
func (h *RosterHandler) GetRoster(c *gin.Context) {
	names := h.drawService.Roster(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"names": names, "count": len(names)})
}

// ReplaceRoster handles PUT /roster
func (h *RosterHandler) ReplaceRoster(c *gin.Context) {
	var req ReplaceRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw := append([]string{}, req.Names...)
	if req.Text != "" {
		raw = append(raw, utils.ParseRosterText(req.Text)...)
	}
	h.reset(c, raw)
}

// ImportRoster handles POST /roster/import (multipart field "file"). Files
// ending in .csv are parsed as CSV, anything else as one name per line.
func (h *RosterHandler) ImportRoster(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRosterUpload)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A roster file is required in field \"file\""})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	var raw []string
	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		raw, err = utils.ParseRosterCSV(file)
	} else {
		var data []byte
		data, err = io.ReadAll(file)
		raw = utils.ParseRosterText(string(data))
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.reset(c, raw)
}

func (h *RosterHandler) reset(c *gin.Context, raw []string) {
	summary, err := h.drawService.ResetAll(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
