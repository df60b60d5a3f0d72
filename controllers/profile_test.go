package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stylieapi/dbhelper"
	"stylieapi/models"
	"stylieapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/shop/profile", UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.StyleProfileOut
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.Id)
	assert.Equal(t, "170-180", resp.HeightRange)
	assert.Equal(t, "athletic", resp.BodyType)
	assert.Equal(t, []string{"navy", "white"}, resp.FavouriteColours)
	assert.Equal(t, "free", resp.Subscription)
}

func TestUpdateProfile(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := models.StyleProfileIn{
		HeightRange:      "180-190",
		BodyType:         "Slim",
		SkinTone:         "FAIR",
		FavouriteColours: []string{"Olive", "BLACK", ""},
		Region:           "north india",
	}
	req := test.NewJSONAuthRequest("POST", "/shop/profile", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var userDb models.UserAccount
	db.First(&userDb, user.ID)
	assert.Equal(t, "180-190", userDb.HeightRange)
	assert.Equal(t, "slim", userDb.BodyType)
	assert.Equal(t, "fair", userDb.SkinTone)
	assert.Equal(t, []string{"olive", "black"}, []string(userDb.FavouriteColours))
	assert.Equal(t, "North India", userDb.Region)
}

func TestUpdateProfileTooManyColours(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := models.StyleProfileIn{
		FavouriteColours: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"},
	}
	req := test.NewJSONAuthRequest("POST", "/shop/profile", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshSubscription(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/shop/profile/refresh-subscription", UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the mock entitlement expires in 2029
	var userDb models.UserAccount
	db.First(&userDb, user.ID)
	assert.Equal(t, "pro", userDb.Subscription)
	assert.NotNil(t, userDb.ExpirationDate)
}

func TestProfileUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/shop/profile", "", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
