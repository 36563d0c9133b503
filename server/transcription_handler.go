package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxAudioUploadBytes caps transcription uploads at 25 MB, the Whisper
// API limit.
const maxAudioUploadBytes = 25 << 20

func (s *Server) handleTranscription(c *gin.Context) {
	if s.transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcription is not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	if fileHeader.Size > maxAudioUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio file exceeds 25 MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("transcription: failed to open upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer file.Close()

	text, err := s.transcriber.Transcribe(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		s.logger.Error("transcription failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}
