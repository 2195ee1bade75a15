package handler

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/storage"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func jwtSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("resolvex-dev-secret")
}

func generateJWT(userID string, role models.Role) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
		"iss":     "resolvex-portal",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

func validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", errors.New("missing user id claim")
	}
	return userID, nil
}

type registerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`

	AuthorityInfo struct {
		Designation string   `json:"designation"`
		Department  string   `json:"department"`
		Division    string   `json:"division"`
		Zone        string   `json:"zone"`
		Ward        string   `json:"ward"`
		Level       string   `json:"level"`
		Categories  []string `json:"categories"`
	} `json:"authorityInfo"`
}

// Register creates a citizen or authority account. Authority accounts start
// pending until an admin approves them.
func (h *Handler) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	role := models.Role(in.Role)
	if role == "" {
		role = models.RoleCitizen
	}
	if role != models.RoleCitizen && role != models.RoleAuthority {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "role must be citizen or authority"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to hash password"})
		return
	}

	approval := models.ApprovalApproved
	if role == models.RoleAuthority {
		approval = models.ApprovalPending
	}

	user := &models.User{
		Name:           in.Name,
		Email:          in.Email,
		Password:       string(hash),
		Phone:          in.Phone,
		Role:           role,
		ApprovalStatus: approval,
		IsActive:       true,
	}
	if role == models.RoleAuthority {
		user.Authority = models.AuthorityInfo{
			Designation: in.AuthorityInfo.Designation,
			Department:  in.AuthorityInfo.Department,
			Division:    in.AuthorityInfo.Division,
			Zone:        in.AuthorityInfo.Zone,
			Ward:        in.AuthorityInfo.Ward,
			Level:       in.AuthorityInfo.Level,
			Categories:  pq.StringArray(in.AuthorityInfo.Categories),
		}
	}

	if _, err := h.Storage.GetUserByEmail(in.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "an account with that email already exists"})
		return
	}
	if err := h.Storage.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create account"})
		return
	}

	token, err := generateJWT(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": user})
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.Storage.GetUserByEmail(in.Email)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "login failed"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "account is deactivated"})
		return
	}

	token, err := generateJWT(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

const userContextKey = "currentUser"

// RequireAuth validates the bearer token and loads the account into the
// request context.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization token missing"})
			return
		}

		userID, err := validateToken(authHeader[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token or expired"})
			return
		}

		user, err := h.Storage.GetUserByID(userID)
		if err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Account not available"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRole gates a route group to one account role.
func (h *Handler) RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "insufficient role"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}
