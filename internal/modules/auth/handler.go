package auth

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vidtube/internal/pkg/apierror"
	"vidtube/internal/pkg/response"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// CookieSettings controls how the token cookies are written. HTTP-only is
// not configurable: tokens are never script-readable.
type CookieSettings struct {
	Secure     bool
	SameSite   string
	Path       string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handler manages all HTTP interactions for authentication. Its methods
// return errors; the httpx wrapper owns translation to responses.
type Handler struct {
	service *Service
	cookies CookieSettings
}

func NewHandler(service *Service, cookies CookieSettings) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
	}
}

func (h *Handler) Register(c *gin.Context) error {
	var req RegisterRequest
	_ = c.ShouldBind(&req) // blank fields are the service's 400, not a bind error

	avatarPath, err := h.stageFile(c, "avatar")
	if err != nil {
		return apierror.Internal(err, "UPLOAD_FAILED", "Failed to store uploaded file")
	}
	coverPath, err := h.stageFile(c, "coverImage")
	if err != nil {
		return apierror.Internal(err, "UPLOAD_FAILED", "Failed to store uploaded file")
	}
	req.AvatarPath = avatarPath
	req.CoverImagePath = coverPath

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		return err
	}

	response.SuccessWithMessage(c, http.StatusCreated, gin.H{"user": user}, "User registered successfully")
	return nil
}

func (h *Handler) Login(c *gin.Context) error {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return apierror.BadRequest("VALIDATION_ERROR", "Invalid request body")
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, res.TokenPair)
	response.SuccessWithMessage(c, http.StatusOK, gin.H{
		"user":         res.User,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	}, "User logged in successfully")
	return nil
}

func (h *Handler) Logout(c *gin.Context) error {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		return apierror.Unauthorized("UNAUTHORIZED", "Authentication required")
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		return err
	}

	h.clearTokenCookies(c)
	response.SuccessWithMessage(c, http.StatusOK, gin.H{}, "User logged out")
	return nil
}

func (h *Handler) Refresh(c *gin.Context) error {
	token, _ := c.Cookie(refreshCookie)
	if token == "" {
		var req RefreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}

	res, err := h.service.Refresh(c.Request.Context(), token)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, res.TokenPair)
	response.SuccessWithMessage(c, http.StatusOK, gin.H{
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	}, "Access token refreshed")
	return nil
}

// stageFile saves an uploaded form file into temp storage and returns its
// local path. A missing file is not an error; the path comes back empty.
func (h *Handler) stageFile(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	dst := filepath.Join(os.TempDir(),
		fmt.Sprintf("vidtube_%s_%d_%s", field, time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (h *Handler) setTokenCookies(c *gin.Context, pair TokenPair) {
	c.SetSameSite(sameSiteMode(h.cookies.SameSite))
	c.SetCookie(accessCookie, pair.AccessToken, int(h.cookies.AccessTTL.Seconds()), h.cookies.Path, "", h.cookies.Secure, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(h.cookies.RefreshTTL.Seconds()), h.cookies.Path, "", h.cookies.Secure, true)
}

func (h *Handler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cookies.SameSite))
	c.SetCookie(accessCookie, "", -1, h.cookies.Path, "", h.cookies.Secure, true)
	c.SetCookie(refreshCookie, "", -1, h.cookies.Path, "", h.cookies.Secure, true)
}

func sameSiteMode(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}
