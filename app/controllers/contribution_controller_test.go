package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/upload"
)

func TestAttachmentErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"store disabled", errAttachmentsUnavailable, fiber.StatusServiceUnavailable},
		{"too large", upload.ErrTooLarge, fiber.StatusRequestEntityTooLarge},
		{"bad type", upload.ErrUnsupportedType, fiber.StatusBadRequest},
		{"upload failure", fmt.Errorf("upload attachment: %w", assert.AnError), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/submit", func(c *fiber.Ctx) error {
				return attachmentError(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/submit", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
