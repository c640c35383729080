package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"portfolio/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: name is required", service.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrInvalidToken, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d; want %d", tc.err, got, tc.want)
		}
	}
}
