// voice.go serves synthesized summary audio.
package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// ServeAudio streams a previously synthesized MP3.
// GET /api/v1/audio/:name
func (h *Handler) ServeAudio(c *gin.Context) {
	if !h.Voice.IsConfigured() {
		errorJSON(c, http.StatusServiceUnavailable, "service_unavailable",
			"Text-to-speech is not configured. Set the OPENAI_API_KEY environment variable to enable it.")
		return
	}

	path, err := h.Voice.Resolve(c.Param("name"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, "not_found", "Audio file not found")
		return
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		errorJSON(c, http.StatusNotFound, "not_found", "Audio file not found")
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	c.File(path)
}
