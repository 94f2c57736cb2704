package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.Replace(authHeader, "Bearer ", "", 1)
	}
	// Browser clients carry the token in the session cookie
	cookie, err := c.Cookie("session")
	if err != nil {
		return ""
	}
	return cookie
}

// CustomerAuthMiddleware authenticates a customer session token and
// puts the customer in the context
func CustomerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.LogError("Missing session token")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please sign in for access"})
			c.Abort()
			return
		}

		claims, err := utils.ParseSessionToken(tokenString)
		if err != nil {
			utils.LogError("Invalid session token: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please sign in for access"})
			c.Abort()
			return
		}

		if role, _ := claims["role"].(string); role != utils.RoleCustomer {
			utils.LogError("Non-customer token used on customer route")
			c.JSON(http.StatusForbidden, gin.H{"error": "Customer access required"})
			c.Abort()
			return
		}

		customerID, _ := claims["customer_id"].(string)
		var customer models.Customer
		if err := config.DB.Where("customer_id = ?", customerID).First(&customer).Error; err != nil {
			utils.LogError("Customer not found: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Customer not found"})
			c.Abort()
			return
		}

		c.Set("customer", customer)
		c.Next()
	}
}

// VendorAuthMiddleware authenticates a staff session token and puts
// the staff member and their store in the context
func VendorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.LogError("Missing session token")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please sign in for access"})
			c.Abort()
			return
		}

		claims, err := utils.ParseSessionToken(tokenString)
		if err != nil {
			utils.LogError("Invalid session token: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please sign in for access"})
			c.Abort()
			return
		}

		if role, _ := claims["role"].(string); role != utils.RoleVendor {
			utils.LogError("Non-vendor token used on vendor route")
			c.JSON(http.StatusForbidden, gin.H{"error": "Vendor access required"})
			c.Abort()
			return
		}

		staffID, _ := claims["staff_id"].(string)
		var staff models.Staff
		if err := config.DB.Where("staff_id = ?", staffID).First(&staff).Error; err != nil {
			utils.LogError("Staff not found: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Staff not found"})
			c.Abort()
			return
		}

		if staff.Status != models.StaffStatusActive {
			utils.LogError("Disabled staff attempted access: %s", staff.StaffID)
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
			c.Abort()
			return
		}

		var store models.Store
		if err := config.DB.Where("store_id = ?", staff.StoreID).First(&store).Error; err != nil {
			utils.LogError("Store not found for staff %s: %v", staff.StaffID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Store not found"})
			c.Abort()
			return
		}

		c.Set("staff", staff)
		c.Set("store", store)
		c.Next()
	}
}
