package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/middlewares"
	"github.com/mmdatafocus/pos_backend/models"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func register(c *gin.Context) {
	var input models.Registration
	if !bind(c, &input) {
		return
	}
	user, err := models.Register(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Auth", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// login accepts a JSON body or an OAuth2 style password form.
func login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBind(&input); err != nil {
		respondValidation(c, err)
		return
	}
	info, err := models.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, "Auth", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func refresh(c *gin.Context) {
	var input refreshRequest
	if !bind(c, &input) {
		return
	}
	info, err := models.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		respondError(c, "Auth", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func logout(c *gin.Context) {
	if _, err := models.Logout(c.Request.Context()); err != nil {
		respondError(c, "Auth", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully logged out"})
}

func me(c *gin.Context) {
	if user := middlewares.CurrentUser(c); user != nil {
		c.JSON(http.StatusOK, user)
		return
	}
	user, err := models.GetMe(c.Request.Context())
	if err != nil {
		respondError(c, "Auth", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
