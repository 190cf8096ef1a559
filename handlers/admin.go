package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
)

type updateSettingRequest struct {
	Value       string  `json:"value"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

func createUser(c *gin.Context) {
	var input models.NewUser
	if !bind(c, &input) {
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "User", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func listUsers(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	users, err := models.GetAllUsers(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, "User", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func getUser(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	user, err := models.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, "User", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func updateUser(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.UpdateUserInput
	if !bind(c, &input) {
		return
	}
	user, err := models.UpdateUser(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "User", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func deleteUser(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	user, err := models.DeleteUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, "User", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func createRole(c *gin.Context) {
	var input models.NewRole
	if !bind(c, &input) {
		return
	}
	role, err := models.CreateRole(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Role", err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

func listRoles(c *gin.Context) {
	roles, err := models.GetRoles(c.Request.Context())
	if err != nil {
		respondError(c, "Role", err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func getRole(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	role, err := models.GetRole(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Role", err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func updateRole(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewRole
	if !bind(c, &input) {
		return
	}
	role, err := models.UpdateRole(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "Role", err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func deleteRole(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	role, err := models.DeleteRole(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Role", err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func createSetting(c *gin.Context) {
	var input models.NewSetting
	if !bind(c, &input) {
		return
	}
	setting, err := models.CreateSetting(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Setting", err)
		return
	}
	c.JSON(http.StatusCreated, setting)
}

func listSettings(c *gin.Context) {
	settings, err := models.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, "Setting", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func getSetting(c *gin.Context) {
	setting, err := models.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, "Setting", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func updateSetting(c *gin.Context) {
	var input updateSettingRequest
	if !bind(c, &input) {
		return
	}
	setting, err := models.UpdateSetting(c.Request.Context(), c.Param("key"), input.Value, input.Description)
	if err != nil {
		respondError(c, "Setting", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func deleteSetting(c *gin.Context) {
	setting, err := models.DeleteSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, "Setting", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func createNotification(c *gin.Context) {
	var input models.NewNotification
	if !bind(c, &input) {
		return
	}
	notification, err := models.CreateNotification(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Notification", err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}

func listNotifications(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	notifications, err := models.ListNotifications(c.Request.Context(), c.Query("unread_only") == "true", skip, limit)
	if err != nil {
		respondError(c, "Notification", err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func markNotificationRead(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	notification, err := models.MarkNotificationRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Notification", err)
		return
	}
	c.JSON(http.StatusOK, notification)
}
