package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newAdminUserContext(t *testing.T, method, body string, callerID, targetID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/admin/users/"+targetID.Hex(), strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(targetID.Hex())
	c.Set("userID", callerID)
	c.Set("isAdmin", true)
	return c, rec
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	adminID := primitive.NewObjectID()

	c, rec := newAdminUserContext(t, http.MethodDelete, "", adminID, adminID)
	require.NoError(t, DeleteUser(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "own account")
}

func TestUpdateUserRejectsDroppingOwnAdminFlag(t *testing.T) {
	adminID := primitive.NewObjectID()

	c, rec := newAdminUserContext(t, http.MethodPut, `{"isAdmin": false}`, adminID, adminID)
	require.NoError(t, UpdateUser(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "admin privileges")
}

func TestEmailAvailable(t *testing.T) {
	available, err := emailAvailable(mongo.ErrNoDocuments)
	require.NoError(t, err)
	assert.True(t, available)

	available, err = emailAvailable(nil)
	require.NoError(t, err)
	assert.False(t, available, "a matched document means the email is taken")

	lookupErr := errors.New("connection reset")
	available, err = emailAvailable(lookupErr)
	assert.ErrorIs(t, err, lookupErr, "an unknown lookup state must not pass as available")
	assert.False(t, available)
}

func TestLoginLookupStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, loginLookupStatus(mongo.ErrNoDocuments))
	assert.Equal(t, http.StatusInternalServerError, loginLookupStatus(errors.New("server selection timeout")))
}

func TestRegisterRequestValidation(t *testing.T) {
	valid := RegisterRequest{Name: "Dana", Email: "dana@example.com", Password: "longenough"}
	assert.NoError(t, validate.Struct(valid))

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Error(t, validate.Struct(badEmail))

	shortPassword := valid
	shortPassword.Password = "short"
	assert.Error(t, validate.Struct(shortPassword))

	noName := valid
	noName.Name = ""
	assert.Error(t, validate.Struct(noName))
}
