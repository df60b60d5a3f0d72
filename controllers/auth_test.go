package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stylieapi/dbhelper"
	"stylieapi/models"
	"stylieapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthGoogle(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	param := models.GoogleAuthSignIn{
		IdToken:  "faketoken",
		Platform: "ios",
	}
	req := test.NewJSONRequest("POST", "/auth/google/v2?verify=true", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echo.Map
	json.Unmarshal(rec.Body.Bytes(), &resp)

	assert.Equal(t, "fake@example.com", resp["email"], resp)
	assert.Equal(t, true, resp["new"], resp)
	assert.Equal(t, "pictureurl", resp["avatar"], resp)
	assert.NotEmpty(t, resp["access_token"], resp)
	assert.NotEmpty(t, resp["refresh_token"], resp)

	var user models.UserAccount
	db.First(&user, "email = ?", "fake@example.com")

	assert.Equal(t, "fake@example.com", user.Email)
	assert.Equal(t, "STARTED_AUTH", user.Status)
	assert.Equal(t, models.PlatformIOS, user.Platform)
	assert.Equal(t, "123googleid", user.GoogleID)

	param2 := models.SignUpIn{
		IdToken:  "faketoken",
		Platform: "ios",
		ProfileIn: models.ProfileIn{
			Name: "My Name",
		},
	}
	req2 := test.NewJSONRequest("POST", "/auth/google/v2", param2)
	rec2 := httptest.NewRecorder()

	e.ServeHTTP(rec2, req2)

	require.Equal(t, http.StatusOK, rec2.Code, rec2.Body.String())

	db.First(&user, "email = ?", "fake@example.com")
	assert.Equal(t, "FINISHED_AUTH", user.Status)
	assert.Equal(t, "My Name", user.Name)

	// a second verify call is a plain login now
	req3 := test.NewJSONRequest("POST", "/auth/google/v2?verify=true", param)
	rec3 := httptest.NewRecorder()

	e.ServeHTTP(rec3, req3)

	require.Equal(t, http.StatusOK, rec3.Code, rec3.Body.String())
	var resp3 echo.Map
	json.Unmarshal(rec3.Body.Bytes(), &resp3)
	assert.Equal(t, fmt.Sprint(resp3["id"]), fmt.Sprint(user.ID), rec3.Body.String())
	assert.Equal(t, false, resp3["new"], resp3)
}

func TestAuthGoogleBadPlatform(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	param := models.GoogleAuthSignIn{
		IdToken:  "faketoken",
		Platform: "playstation",
	}
	req := test.NewJSONRequest("POST", "/auth/google/v2?verify=true", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestRefreshToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	user := test.FakeUser(db)
	refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
	require.NoError(t, err)

	param := models.RefreshIn{RefreshToken: refreshToken}
	req := test.NewJSONRequest("POST", "/auth/refresh-token", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echo.Map
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NotEmpty(t, resp["access_token"], resp)
	assert.NotEmpty(t, resp["refresh_token"], resp)
}

func TestRefreshTokenEmpty(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	req := test.NewJSONRequest("POST", "/auth/refresh-token", models.RefreshIn{})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthMe(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/auth/me", UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echo.Map
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, user.Email, resp["email"], resp)
	assert.Equal(t, user.Name, resp["name"], resp)
	assert.Equal(t, "free", resp["subscription"], resp)
}

func TestAuthMeUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	req := test.NewJSONAuthRequest("GET", "/auth/me", "", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterPush(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := models.UserPushIn{Token: "devicetoken123", Platform: "ios"}
	req := test.NewJSONAuthRequest("POST", "/auth/register-push", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pushToken models.UserPushToken
	r := db.Where("token = ? and user_account_id = ?", "devicetoken123", user.ID).First(&pushToken)
	require.NoError(t, r.Error)
	assert.Equal(t, models.PlatformIOS, pushToken.Platform)
	assert.True(t, pushToken.Active)
}

func TestRegisterPushBadPlatform(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := models.UserPushIn{Token: "devicetoken123", Platform: "symbian"}
	req := test.NewJSONAuthRequest("POST", "/auth/register-push", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeletePush(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	pushToken := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      models.PlatformIOS,
		Token:         "devicetoken123",
		Active:        true,
	}
	db.Create(&pushToken)

	param := models.UserPushIn{Token: "devicetoken123", Platform: "ios"}
	req := test.NewJSONAuthRequest("POST", "/auth/delete-push", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echo.Map
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, true, resp["deleted"], resp)
}

func TestUserSettings(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := models.UserSettingsIn{ReceiveNotifications: false}
	req := test.NewJSONAuthRequest("POST", "/auth/settings", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var userDb models.UserAccount
	db.First(&userDb, user.ID)
	assert.False(t, userDb.ReceiveNotifications)
}

func TestDeleteAccount(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/auth/delete-account", UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var userDb models.UserAccount
	db.First(&userDb, user.ID)
	assert.NotNil(t, userDb.ConfirmedDeleteDate)
}
