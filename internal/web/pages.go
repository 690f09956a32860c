package web

import (
	"net/http"

	"https-examples/internal/auth"
	"https-examples/internal/middleware"

	"github.com/gin-gonic/gin"
)

// LoadingFailed is the body served when a gated page has no profile to show.
const LoadingFailed = "User Data loading failed !!"

const htmlContentType = "text/html; charset=utf-8"

// SecretKey is the payload of the oauth example's /secure route.
const SecretKey = "This is secret_key !!"

type Pages struct {
	assets     *Assets
	loginPath  string
	logoutPath string
	detailPath string
}

// NewPages builds the page handlers. The paths are the links rendered on
// the main page.
func NewPages(assets *Assets, loginPath, logoutPath, detailPath string) *Pages {
	return &Pages{
		assets:     assets,
		loginPath:  loginPath,
		logoutPath: logoutPath,
		detailPath: detailPath,
	}
}

func (p *Pages) Index(c *gin.Context) {
	c.Data(http.StatusOK, htmlContentType, p.assets.Index)
}

func (p *Pages) Failure(c *gin.Context) {
	c.Data(http.StatusOK, htmlContentType, p.assets.Failure)
}

type mainPageData struct {
	DisplayName string
	Photo       string
	Email       auth.Email
	DetailPath  string
	LoginPath   string
	LogoutPath  string
}

// MainPage greets the logged-in user.
func (p *Pages) MainPage(c *gin.Context) {
	profile, ok := middleware.ProfileFromContext(c.Request.Context())
	if !ok {
		c.String(http.StatusOK, LoadingFailed)
		return
	}

	c.Header("Content-Type", htmlContentType)
	c.Status(http.StatusOK)
	err := p.assets.Templates.ExecuteTemplate(c.Writer, mainPageName, mainPageData{
		DisplayName: profile.DisplayName,
		Photo:       profile.PrimaryPhoto(),
		Email:       profile.PrimaryEmail(),
		DetailPath:  p.detailPath,
		LoginPath:   p.loginPath,
		LogoutPath:  p.logoutPath,
	})
	if err != nil {
		_ = c.Error(err)
	}
}

type secretResponse struct {
	GoogleUserID string `json:"Google_UserID"`
	*auth.Profile
}

// Secret returns the profile of the logged-in user, prefixed with its ID.
func (p *Pages) Secret(c *gin.Context) {
	profile, ok := middleware.ProfileFromContext(c.Request.Context())
	if !ok {
		c.String(http.StatusOK, LoadingFailed)
		return
	}
	c.JSON(http.StatusOK, secretResponse{
		GoogleUserID: profile.ID,
		Profile:      profile,
	})
}

// Secure returns a fixed secret.
func (p *Pages) Secure(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key": SecretKey})
}

// Hello is the helmet example's only page.
func Hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}
