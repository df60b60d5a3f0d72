package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stylieapi/dbhelper"
	"stylieapi/models"
	"stylieapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessageOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatResponse: "```json\n{\"reply\": \"Love that energy! Go bold today.\", \"explain\": \"Confidence reads in colour.\", \"tags\": [\"mood\"]}\n```"}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := ChatMessageIn{Message: "hello there, feeling great today"}
	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ChatTurnResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.ChatID > 0)
	assert.Equal(t, "Love that energy! Go bold today.", resp.Reply)
	assert.Equal(t, "Confidence reads in colour.", resp.Explain)
	assert.Equal(t, []string{"mood"}, resp.Tags)
	assert.NotEmpty(t, stylist.LastTurns)

	var sessionDb models.ChatSession
	db.First(&sessionDb, resp.ChatID)
	assert.Equal(t, "chat", sessionDb.Mode)
	require.NotNil(t, sessionDb.Title)
	assert.Equal(t, "hello there, feeling great today", *sessionDb.Title)

	var messageDb models.ChatMessage
	db.First(&messageDb, resp.MessageID)
	require.NotNil(t, messageDb.LLMModel)
	assert.Equal(t, "gemini-2.5-flash", *messageDb.LLMModel)
	require.NotNil(t, messageDb.LLMTotalTokenCount)
	assert.Equal(t, int32(23), *messageDb.LLMTotalTokenCount)
}

func TestChatAcademicGate(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatResponse: "should never be used"}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := ChatMessageIn{Message: "solve this equation for me"}
	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ChatTurnResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, academicDeclineReply, resp.Reply)
	assert.Equal(t, []string{"boundary"}, resp.Tags)
	// the stylist must never see off-topic prompts
	assert.Nil(t, stylist.LastTurns)
}

func TestChatLLMErrorChatMode(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatErr: errors.New("upstream quota exceeded")}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := ChatMessageIn{Message: "what should I wear today"}
	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestChatWardrobeMode(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	owner := test.FakeUser(db)
	items := test.FakeWardrobe(db, owner)

	stylist.ChatResponse = fmt.Sprintf("```json\n{\"reply\": \"Crisp and clean for today.\", \"explain\": \"Blue pairs well with dark denim.\", \"tags\": [\"casual\"], \"selected_item_ids\": [\"%v\", \"%v\"], \"image_prompt\": \"person wearing a blue shirt and black jeans\"}\n```", items[0].ID, items[2].ID)

	param := ChatMessageIn{Message: "pick something for a casual friday", Mode: "wardrobe"}
	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(owner.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ChatTurnResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "Crisp and clean for today.", resp.Reply)
	require.Len(t, resp.Outfit, 2)
	outfitIds := []uint{resp.Outfit[0].ID, resp.Outfit[1].ID}
	assert.Contains(t, outfitIds, items[0].ID)
	assert.Contains(t, outfitIds, items[2].ID)

	var messageDb models.ChatMessage
	db.First(&messageDb, resp.MessageID)
	assert.Len(t, []string(messageDb.SelectedItemIDs), 2)
	require.NotNil(t, messageDb.ImagePrompt)
	assert.Equal(t, "person wearing a blue shirt and black jeans", *messageDb.ImagePrompt)
	// no queue client wired, the render never leaves idle
	assert.Equal(t, "idle", messageDb.ImageStatus)
}

func TestChatWardrobeLLMErrorFallback(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatErr: errors.New("upstream timeout")}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	test.FakeWardrobe(db, user)

	param := ChatMessageIn{Mode: "wardrobe"}
	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ChatTurnResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Reply)
	assert.Len(t, resp.Outfit, 2)
}

func TestChatDailyLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatResponse: "```json\n{\"reply\": \"hi\"}\n```"}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	user.EnforcedDailyChatLimit = Int32Pointer(0)
	db.Save(user)

	param := ChatMessageIn{Message: "hello"}
	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatAppendToSession(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatResponse: "```json\n{\"reply\": \"Sounds good!\"}\n```"}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), ChatMessageIn{Message: "first message"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first ChatTurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	chatId := first.ChatID
	req = test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), ChatMessageIn{Message: "second message", ChatID: &chatId})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var second ChatTurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.ChatID, second.ChatID)

	var count int64
	db.Model(&models.ChatMessage{}).Where("chat_session_id = ?", first.ChatID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestChatSessionNotFound(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatResponse: "```json\n{\"reply\": \"hi\"}\n```"}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	missing := uint(9999)
	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), ChatMessageIn{Message: "hello", ChatID: &missing})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEmptyChat(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, &test.StylistMock{}, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), ChatMessageIn{})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ChatTurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ChatID > 0)

	var count int64
	db.Model(&models.ChatMessage{}).Where("chat_session_id = ?", resp.ChatID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestChatHistory(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatResponse: "```json\n{\"reply\": \"Great choice!\"}\n```"}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), ChatMessageIn{Message: "hello stylist"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = test.NewJSONAuthRequest("GET", "/shop/chat", UIntToStr(user.ID), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string][]models.ChatSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["chats"], 1)
	require.Len(t, resp["chats"][0].Messages, 1)
	assert.Equal(t, "hello stylist", resp["chats"][0].Messages[0].UserMessage)
	assert.Equal(t, "Great choice!", resp["chats"][0].Messages[0].Reply)
}

func TestChatDeleteSession(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	stylist := &test.StylistMock{ChatResponse: "```json\n{\"reply\": \"hi\"}\n```"}
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, stylist, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/shop/chat", UIntToStr(user.ID), ChatMessageIn{Message: "hello"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var turn ChatTurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))

	req = test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/shop/chat/%v", turn.ChatID), UIntToStr(user.ID), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	db.Model(&models.ChatMessage{}).Where("chat_session_id = ?", turn.ChatID).Count(&count)
	assert.Equal(t, int64(0), count)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/shop/chat/%v", turn.ChatID), UIntToStr(user.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
