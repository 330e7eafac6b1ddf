package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/soleshop/soleshop-backend-go/database"
	"github.com/soleshop/soleshop-backend-go/models"
	"github.com/soleshop/soleshop-backend-go/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// emailAvailable interprets the duplicate-email lookup result. Only a
// definitive no-documents answer counts as available; any other lookup
// failure is returned so the caller does not register over an unknown state.
func emailAvailable(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if err == mongo.ErrNoDocuments {
		return true, nil
	}
	return false, err
}

// loginLookupStatus maps a credential lookup failure to the client status.
// An unknown email is indistinguishable from a bad password; everything
// else is a server-side failure.
func loginLookupStatus(err error) int {
	if err == mongo.ErrNoDocuments {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func RegisterUser(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := database.Users()

	available, err := emailAvailable(collection.FindOne(ctx, bson.M{"email": req.Email}).Err())
	if err != nil {
		zap.L().Error("failed to check email availability", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create user"})
	}
	if !available {
		return c.JSON(http.StatusConflict, map[string]string{"message": "Email already registered"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create user"})
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashedPassword),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := collection.InsertOne(ctx, user); err != nil {
		zap.L().Error("failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create user"})
	}

	token, err := utils.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		zap.L().Error("failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to generate token"})
	}

	return c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

func LoginUser(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users().FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		status := loginLookupStatus(err)
		if status == http.StatusInternalServerError {
			zap.L().Error("failed to look up user for login", zap.Error(err))
			return c.JSON(status, map[string]string{"message": "Failed to log in"})
		}
		return c.JSON(status, map[string]string{"message": "Invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	}

	token, err := utils.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		zap.L().Error("failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to generate token"})
	}

	return c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

func GetUserProfile(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
	}

	var user models.User
	err := database.Users().FindOne(c.Request().Context(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
		}
		zap.L().Error("failed to fetch user", zap.String("id", userID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch profile"})
	}

	return c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

func UpdateUserProfile(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Error("failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update profile"})
		}
		set["password"] = string(hashed)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var updated models.User
	err := database.Users().FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
		}
		zap.L().Error("failed to update profile", zap.String("id", userID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update profile"})
	}

	return c.JSON(http.StatusOK, updated)
}

func GetUserByID(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid user ID"})
	}

	var user models.User
	err = database.Users().FindOne(c.Request().Context(), bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
		}
		zap.L().Error("failed to fetch user", zap.String("id", objID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch user"})
	}

	return c.JSON(http.StatusOK, user)
}

type AdminUpdateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	IsAdmin *bool  `json:"isAdmin"`
}

// UpdateUser is the admin user-management update. An admin cannot clear
// their own admin flag.
func UpdateUser(c echo.Context) error {
	callerID, _ := c.Get("userID").(primitive.ObjectID)

	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid user ID"})
	}

	var req AdminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	if req.IsAdmin != nil && !*req.IsAdmin && objID == callerID {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Cannot remove your own admin privileges"})
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.IsAdmin != nil {
		set["isAdmin"] = *req.IsAdmin
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var updated models.User
	err = database.Users().FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
		}
		zap.L().Error("failed to update user", zap.String("id", objID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update user"})
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteUser is the admin user deletion. An admin cannot delete their own
// account.
func DeleteUser(c echo.Context) error {
	callerID, _ := c.Get("userID").(primitive.ObjectID)

	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid user ID"})
	}

	if objID == callerID {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Cannot delete your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := database.Users().DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		zap.L().Error("failed to delete user", zap.String("id", objID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete user"})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted"})
}
