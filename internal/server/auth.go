package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"gridsight/internal/dao"
	"gridsight/internal/model"
	"gridsight/internal/version"
	"gridsight/pkg/str"
)

const userKey = "user"

type TokenClaims struct {
	jwt.RegisteredClaims
	UserId int `json:"user_id"`
}

func TrySetUserToContext(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			tokenStr, _ = c.Cookie("token")
		}
		if tokenStr == "" {
			auth := c.GetHeader("Authorization")
			if auth != "" && len(auth) > 7 && auth[:7] == "Bearer " {
				tokenStr = auth[7:]
			}
		}
		if tokenStr == "" {
			c.Next()
			return
		}

		token, tokenErr := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if tokenErr != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		claims, ok := token.Claims.(*TokenClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token claims",
			})
			return
		}

		user, userErr := model.GetUserById(claims.UserId)
		if userErr != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid user",
			})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func NeedAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(userKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	if u, exists := c.Get(userKey); exists {
		return u.(*model.User)
	}
	return nil
}

// handleLogin user login
// @Summary User login
// @Description Exchange username/password for a JWT
// @Tags user
// @Accept json
// @Produce json
// @Param req body dao.LoginRequest true "login request"
// @Success 200 {object} dao.LoginResponse
// @Failure 400 {object} ErrorResponse "bad request"
// @Failure 401 {object} ErrorResponse "bad credentials"
// @Router /api/v1/login [post]
func (s *Server) handleLogin(c *gin.Context) {
	var req dao.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	user, err := model.GetUserByUsername(req.Username)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	if user == nil || user.Password != str.Md5Str(req.Password) {
		s.writeError(c, http.StatusUnauthorized, fmt.Errorf("invalid username or password"))
		return
	}

	token, err := genJwtToken(user, s.conf.JwtSecret)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.SetCookie("token", token, 7*24*60*60, "/", "", false, true)
	c.JSON(http.StatusOK, dao.LoginResponse{
		Token:     token,
		TokenType: "bearer",
	})
}

// handleLogout user logout
// @Summary User logout
// @Tags user
// @Produce json
// @Success 200
// @Router /api/v1/logout [post]
func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
}

func genJwtToken(user *model.User, jwtSecret string) (string, error) {
	claims := TokenClaims{
		UserId: user.Id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    version.APP,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
