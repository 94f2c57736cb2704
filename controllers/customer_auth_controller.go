package controllers

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// GoogleUserInfo holds the profile returned by Google's userinfo
// endpoint
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// GoogleLogin redirects the customer to Google's consent screen
func GoogleLogin(c *gin.Context) {
	state := utils.NewID("st_")
	session := sessions.Default(c)
	session.Set("oauth_state", state)
	if err := session.Save(); err != nil {
		utils.InternalServerError(c, "Failed to save session", err.Error())
		return
	}
	url := config.GoogleOAuthConfig.AuthCodeURL(state)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback completes the OAuth flow and signs the customer in
func GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	expectedState, _ := session.Get("oauth_state").(string)
	session.Delete("oauth_state")
	if err := session.Save(); err != nil {
		utils.InternalServerError(c, "Failed to save session", err.Error())
		return
	}
	if expectedState == "" || c.Query("state") != expectedState {
		utils.BadRequest(c, "Invalid OAuth state", nil)
		return
	}

	code := c.Query("code")
	if code == "" {
		utils.BadRequest(c, "No code provided", nil)
		return
	}

	token, err := config.GoogleOAuthConfig.Exchange(c, code)
	if err != nil {
		utils.InternalServerError(c, "Failed to exchange token", err.Error())
		return
	}

	// Get user info from Google
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + url.QueryEscape(token.AccessToken))
	if err != nil {
		utils.InternalServerError(c, "Failed to get user info", err.Error())
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		utils.InternalServerError(c, "Failed to read response", err.Error())
		return
	}

	var googleUser GoogleUserInfo
	if err := json.Unmarshal(data, &googleUser); err != nil {
		utils.InternalServerError(c, "Failed to parse user info", err.Error())
		return
	}
	if googleUser.Email == "" {
		utils.BadRequest(c, "Google account has no email", nil)
		return
	}

	customer, err := upsertGoogleCustomer(googleUser)
	if err != nil {
		utils.LogError("Failed to upsert customer: %v", err)
		utils.InternalServerError(c, "Failed to sign in", nil)
		return
	}

	sessionToken, err := utils.GenerateCustomerToken(customer.CustomerID)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token", err.Error())
		return
	}

	c.SetCookie("session", sessionToken, 60*60*24*30, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, config.BaseURL()+"/wallet")
}

// upsertGoogleCustomer finds the customer by Google subject, merging
// an existing email-only account when one exists
func upsertGoogleCustomer(googleUser GoogleUserInfo) (*models.Customer, error) {
	now := time.Now()
	email := utils.NormalizeEmail(googleUser.Email)

	var customer models.Customer
	err := config.DB.Where("google_sub = ?", googleUser.ID).First(&customer).Error
	if err == nil {
		updates := map[string]interface{}{
			"email":          email,
			"email_verified": googleUser.VerifiedEmail,
			"last_seen_at":   now,
		}
		if err := config.DB.Model(&models.Customer{}).
			Where("customer_id = ?", customer.CustomerID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
		return &customer, nil
	}

	var byEmail models.Customer
	if err := config.DB.Where("email = ?", email).First(&byEmail).Error; err == nil && byEmail.GoogleSub == nil {
		updates := map[string]interface{}{
			"google_sub":     googleUser.ID,
			"email_verified": googleUser.VerifiedEmail,
			"last_seen_at":   now,
		}
		if err := config.DB.Model(&models.Customer{}).
			Where("customer_id = ?", byEmail.CustomerID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
		return &byEmail, nil
	}

	sub := googleUser.ID
	customer = models.Customer{
		CustomerID:    utils.NewID("c_"),
		GoogleSub:     &sub,
		Email:         email,
		EmailVerified: googleUser.VerifiedEmail,
		CreatedAt:     now,
		LastSeenAt:    now,
	}
	if err := config.DB.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func generateOTP() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(1000000))
	return fmt.Sprintf("%06d", n.Int64())
}

// RequestLoginOTP starts the email fallback sign-in by mailing a
// one-time code
func RequestLoginOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email is required", err.Error())
		return
	}
	if !utils.ValidateEmail(req.Email) {
		utils.ValidationError(c, "Invalid email address", nil)
		return
	}
	email := utils.NormalizeEmail(req.Email)

	otp := generateOTP()
	otpTTL, _ := time.ParseDuration(utils.OTPExpiration)

	session := sessions.Default(c)
	session.Set("login_otp", otp)
	session.Set("login_otp_expires", time.Now().Add(otpTTL).Unix())
	session.Set("login_email", email)
	if err := session.Save(); err != nil {
		utils.LogError("Failed to save session for %s: %v", email, err)
		utils.InternalServerError(c, "Failed to save session", err.Error())
		return
	}

	if err := utils.SendLoginOTP(email, otp); err != nil {
		utils.LogError("Failed to send login OTP to %s: %v", email, err)
		utils.InternalServerError(c, "Failed to send sign-in email", nil)
		return
	}

	utils.LogInfo("Login OTP sent to %s", email)
	utils.Success(c, "Sign-in code sent to your email", gin.H{
		"expires_in": int(otpTTL.Seconds()),
	})
}

// VerifyLoginOTP completes the email fallback sign-in
func VerifyLoginOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email and code are required", err.Error())
		return
	}
	email := utils.NormalizeEmail(req.Email)

	session := sessions.Default(c)
	storedOTP, _ := session.Get("login_otp").(string)
	storedEmail, _ := session.Get("login_email").(string)
	expiresAt, _ := session.Get("login_otp_expires").(int64)

	if storedOTP == "" || storedEmail != email || req.OTP != storedOTP {
		utils.LogError("Bad login OTP for %s", email)
		utils.Unauthorized(c, "Invalid sign-in code")
		return
	}
	if time.Now().Unix() > expiresAt {
		utils.Unauthorized(c, "Sign-in code has expired")
		return
	}

	session.Delete("login_otp")
	session.Delete("login_otp_expires")
	session.Delete("login_email")
	if err := session.Save(); err != nil {
		utils.InternalServerError(c, "Failed to save session", err.Error())
		return
	}

	now := time.Now()
	var customer models.Customer
	if err := config.DB.Where("email = ?", email).First(&customer).Error; err != nil {
		customer = models.Customer{
			CustomerID:    utils.NewID("c_"),
			Email:         email,
			EmailVerified: true,
			CreatedAt:     now,
			LastSeenAt:    now,
		}
		if err := config.DB.Create(&customer).Error; err != nil {
			utils.LogError("Failed to create customer %s: %v", email, err)
			utils.InternalServerError(c, "Failed to sign in", nil)
			return
		}
	} else {
		if err := config.DB.Model(&models.Customer{}).
			Where("customer_id = ?", customer.CustomerID).
			UpdateColumn("last_seen_at", now).Error; err != nil {
			utils.LogError("Failed to update last seen for %s: %v", customer.CustomerID, err)
		}
	}

	token, err := utils.GenerateCustomerToken(customer.CustomerID)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token", err.Error())
		return
	}

	c.SetCookie("session", token, 60*60*24*30, "/", "", false, true)
	utils.Success(c, "Signed in", gin.H{
		"token":       token,
		"customer_id": customer.CustomerID,
	})
}

// Logout clears the session cookie
func Logout(c *gin.Context) {
	c.SetCookie("session", "", -1, "/", "", false, true)
	utils.Success(c, "Signed out", nil)
}
