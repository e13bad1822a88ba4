package httpapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"qrmenu/internal/domain"
	"qrmenu/internal/menu"
	"qrmenu/internal/upload"
)

// multipart framing allowance on top of the file size cap
const multipartSlack = 1 << 20

type healthStatus struct {
	Status    string    `json:"status" example:"healthy"`
	Timestamp time.Time `json:"timestamp"`
}

type uploadResult struct {
	URL string `json:"url" example:"/uploads/1717000000000-1a2b3c4d.jpg"`
}

// @Summary Health check
// @Description Pings the store.
// @Tags system
// @Produce json
// @Success 200 {object} dataResponse{data=healthStatus}
// @Failure 500 {object} errorResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	if err := s.deps.Store.Ping(c); err != nil {
		log.Printf("health: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Success: false, Error: "database unreachable"})
		return
	}
	respond(c, http.StatusOK, healthStatus{Status: "healthy", Timestamp: time.Now().UTC()})
}

// @Summary Dashboard counters
// @Tags system
// @Produce json
// @Success 200 {object} dataResponse{data=domain.Stats}
// @Failure 500 {object} errorResponse
// @Router /stats [get]
func (s *Server) stats(c *gin.Context) {
	st, err := s.deps.Stats.Stats(c)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, st)
}

// @Summary Public menu view
// @Description Locale-resolved menu; locale falls back to Accept-Language, then en.
// @Tags menu
// @Produce json
// @Param slug path string true "Restaurant slug"
// @Param locale query string false "en or ar"
// @Param q query string false "Search term"
// @Success 200 {object} dataResponse{data=menu.View}
// @Failure 404 {object} errorResponse
// @Router /menu/{slug} [get]
func (s *Server) menuView(c *gin.Context) {
	opts := menu.Options{
		Locale: menu.NegotiateLocale(c.Query("locale"), c.GetHeader("Accept-Language")),
		Search: c.Query("q"),
	}
	v, err := s.deps.Menus.View(c, c.Param("slug"), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

// @Summary Upload image
// @Description JPEG, PNG, WebP or GIF; stored as a JPEG no larger than 800x800.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} dataResponse{data=uploadResult}
// @Failure 400 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /upload [post]
func (s *Server) uploadImage(c *gin.Context) {
	limit := s.deps.Uploads.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(c, fmt.Errorf("%w: maximum size %d bytes", upload.ErrTooLarge, limit))
			return
		}
		respondError(c, domain.Invalid("file is required"))
		return
	}
	if fh.Size > limit {
		respondError(c, fmt.Errorf("%w: maximum size %d bytes", upload.ErrTooLarge, limit))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", upload.ErrIO, err))
		return
	}
	defer f.Close()

	url, err := s.deps.Uploads.Save(c, f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, uploadResult{URL: url})
}
