package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talenthunt/internal/audit"
	"talenthunt/internal/auth"
	authservice "talenthunt/internal/auth/service"
	sessionstore "talenthunt/internal/auth/store/session"
	identityhandler "talenthunt/internal/identity/handler"
	identityservice "talenthunt/internal/identity/service"
	userstore "talenthunt/internal/identity/store/user"
	jwttoken "talenthunt/internal/jwt_token"
	"talenthunt/internal/media"
	profilehandler "talenthunt/internal/profile/handler"
	profileservice "talenthunt/internal/profile/service"
	profilestore "talenthunt/internal/profile/store/profile"
	registrationhandler "talenthunt/internal/registration/handler"
	registrationservice "talenthunt/internal/registration/service"
	pendingstore "talenthunt/internal/registration/store/pending"
	reviewhandler "talenthunt/internal/review/handler"
	reviewservice "talenthunt/internal/review/service"
	reviewstore "talenthunt/internal/review/store/review"
	"talenthunt/pkg/testutil"
)

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)

// captureSender records verification emails so tests can read the OTP.
type captureSender struct {
	mu       sync.Mutex
	lastBody string
}

func (c *captureSender) Send(_ context.Context, _, _, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastBody = body
	return nil
}

func (c *captureSender) lastOTP(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	m := otpPattern.FindStringSubmatch(c.lastBody)
	require.NotNil(t, m, "no OTP found in %q", c.lastBody)
	return m[1]
}

type app struct {
	router http.Handler
	sender *captureSender
}

func newApp(t *testing.T) *app {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := userstore.NewInMemory()
	profiles := profilestore.NewInMemory()
	reviews := reviewstore.NewInMemory()
	sessions := sessionstore.New()
	pending := pendingstore.NewInMemory()
	sender := &captureSender{}

	photos, err := media.NewFSStore(t.TempDir())
	require.NoError(t, err)

	tokens := jwttoken.NewJWTService("test-signing-key", "talenthunt", "talenthunt-web")
	authSvc := authservice.New(sessions, tokens, time.Hour, logger)
	identitySvc := identityservice.New(users, logger, nil)
	profileSvc := profileservice.New(profiles, users, photos, audit.Nop{}, logger, nil)
	reviewSvc := reviewservice.New(reviews, users, audit.Nop{}, "Anonymous", logger, nil)
	registrationSvc := registrationservice.New(pending, users, profiles, sender, audit.Nop{},
		10*time.Minute, logger, nil, nil)

	router := NewRouter(Deps{
		Logger:       logger,
		Validator:    authSvc,
		Registration: registrationhandler.New(registrationSvc, authSvc, logger),
		Identity:     identityhandler.New(identitySvc, authSvc, audit.Nop{}, logger),
		Profile:      profilehandler.New(profileSvc, identitySvc, reviewSvc, logger),
		Review:       reviewhandler.New(reviewSvc, identitySvc, logger),
	})
	return &app{router: router, sender: sender}
}

func (a *app) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return testutil.DoRequest(a.router, req)
}

// register walks the full signup flow and returns the username plus the
// session cookie issued on verification.
func (a *app) register(t *testing.T, first, last, email string) (string, *http.Cookie) {
	t.Helper()

	rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/signup", map[string]string{
		"first_name": first,
		"last_name":  last,
		"email":      email,
		"password":   "correct-horse-battery",
	}), nil)
	testutil.AssertStatus(t, rr, http.StatusAccepted)
	signup := testutil.UnmarshalResponse[registrationhandler.SignupResponse](t, rr)

	rr = a.do(testutil.NewJSONRequest(t, http.MethodPost, "/verify", map[string]string{
		"registration_token": signup.RegistrationToken,
		"otp":                a.sender.lastOTP(t),
	}), nil)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	verified := testutil.UnmarshalResponse[registrationhandler.VerifyResponse](t, rr)

	cookie := sessionCookie(t, rr)
	return verified.Username, cookie
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestSignupFlow(t *testing.T) {
	a := newApp(t)

	testutil.Given(t, "a submitted signup", func(t *testing.T) {
		rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/signup", map[string]string{
			"first_name": "Jane",
			"last_name":  "Doe",
			"email":      "jane@example.com",
			"password":   "correct-horse-battery",
		}), nil)
		testutil.AssertStatus(t, rr, http.StatusAccepted)
		signup := testutil.UnmarshalResponse[registrationhandler.SignupResponse](t, rr)
		require.NotEmpty(t, signup.RegistrationToken)

		testutil.When(t, "the wrong otp is submitted", func(t *testing.T) {
			rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/verify", map[string]string{
				"registration_token": signup.RegistrationToken,
				"otp":                "000000",
			}), nil)

			testutil.Then(t, "verification fails and the signup survives for retry", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
			})
		})

		testutil.When(t, "the emailed otp is submitted", func(t *testing.T) {
			rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/verify", map[string]string{
				"registration_token": signup.RegistrationToken,
				"otp":                a.sender.lastOTP(t),
			}), nil)

			testutil.Then(t, "the account exists and the caller is logged in", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				verified := testutil.UnmarshalResponse[registrationhandler.VerifyResponse](t, rr)
				assert.Regexp(t, `^jane-doe-\d{14}$`, verified.Username)

				cookie := sessionCookie(t, rr)
				home := a.do(testutil.NewRequest(t, http.MethodGet, "/home"), cookie)
				testutil.AssertStatus(t, home, http.StatusOK)
			})
		})
	})
}

func TestLogin(t *testing.T) {
	a := newApp(t)
	a.register(t, "Jane", "Doe", "jane@example.com")

	testutil.Given(t, "a registered account", func(t *testing.T) {
		testutil.When(t, "logging in with the right password", func(t *testing.T) {
			rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
				"email":    "jane@example.com",
				"password": "correct-horse-battery",
			}), nil)

			testutil.Then(t, "a session cookie is issued", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				sessionCookie(t, rr)
			})
		})

		testutil.When(t, "logging in with the wrong password", func(t *testing.T) {
			rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
				"email":    "jane@example.com",
				"password": "nope",
			}), nil)

			testutil.Then(t, "the attempt is rejected", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
			})
		})
	})
}

func TestAuthenticationGuards(t *testing.T) {
	a := newApp(t)
	_, cookie := a.register(t, "Jane", "Doe", "jane@example.com")

	t.Run("protected routes reject anonymous callers", func(t *testing.T) {
		for _, path := range []string{"/home", "/search?q=jane"} {
			rr := a.do(testutil.NewRequest(t, http.MethodGet, path), nil)
			testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		}
	})

	t.Run("entry points bounce authenticated callers to home", func(t *testing.T) {
		rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{}), cookie)
		testutil.AssertStatus(t, rr, http.StatusSeeOther)
		assert.Equal(t, "/home", rr.Header().Get("Location"))
	})

	t.Run("root redirects to home", func(t *testing.T) {
		rr := a.do(testutil.NewRequest(t, http.MethodGet, "/"), nil)
		testutil.AssertStatus(t, rr, http.StatusSeeOther)
		assert.Equal(t, "/home", rr.Header().Get("Location"))
	})

	t.Run("logout invalidates the session immediately", func(t *testing.T) {
		rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/logout", nil), cookie)
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = a.do(testutil.NewRequest(t, http.MethodGet, "/home"), cookie)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}

func TestReviewFlow(t *testing.T) {
	a := newApp(t)
	_, aliceCookie := a.register(t, "Alice", "Smith", "alice@example.com")
	bobUsername, bobCookie := a.register(t, "Bob", "Jones", "bob@example.com")

	reviewBody := map[string]any{
		"rating_problem_solving": 4,
		"rating_communication":   3,
		"rating_sociability":     5,
		"problem_solving":        "solid",
		"communication":          "clear",
		"sociability":            "friendly",
		"anonymous":              true,
	}

	var reviewID string

	testutil.Given(t, "alice reviews bob anonymously", func(t *testing.T) {
		rr := a.do(testutil.NewJSONRequest(t, http.MethodPost,
			fmt.Sprintf("/user/%s/review", bobUsername), reviewBody), aliceCookie)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		review := testutil.UnmarshalResponse[reviewhandler.ReviewResponse](t, rr)
		assert.Equal(t, "Anonymous", review.DisplayName)
		assert.True(t, review.CanModify, "alice can modify her own review")
		reviewID = review.ID

		testutil.When(t, "bob reads the feed", func(t *testing.T) {
			rr := a.do(testutil.NewRequest(t, http.MethodGet, "/home"), bobCookie)
			testutil.AssertStatus(t, rr, http.StatusOK)
			feed := testutil.UnmarshalResponse[reviewhandler.FeedResponse](t, rr)

			testutil.Then(t, "the review is anonymous and not modifiable by bob", func(t *testing.T) {
				require.Len(t, feed.Reviews, 1)
				assert.Equal(t, "Anonymous", feed.Reviews[0].DisplayName)
				assert.False(t, feed.Reviews[0].CanModify)
			})
		})

		testutil.When(t, "alice submits the review form again", func(t *testing.T) {
			amended := map[string]any{}
			for k, v := range reviewBody {
				amended[k] = v
			}
			amended["rating_problem_solving"] = 1
			amended["anonymous"] = false

			rr := a.do(testutil.NewJSONRequest(t, http.MethodPost,
				fmt.Sprintf("/user/%s/review", bobUsername), amended), aliceCookie)

			testutil.Then(t, "the existing review is amended, not duplicated", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				review := testutil.UnmarshalResponse[reviewhandler.ReviewResponse](t, rr)
				assert.Equal(t, reviewID, review.ID)
				assert.Equal(t, 1, review.Ratings.ProblemSolving)
				assert.NotEqual(t, "Anonymous", review.DisplayName)
			})
		})

		testutil.When(t, "bob tries to edit alice's review", func(t *testing.T) {
			rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/edit/"+reviewID, reviewBody), bobCookie)

			testutil.Then(t, "the edit is forbidden", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
			})
		})

		testutil.When(t, "alice reviews herself", func(t *testing.T) {
			aliceUsername := usernameOf(t, a, bobCookie, "alice")
			rr := a.do(testutil.NewJSONRequest(t, http.MethodPost,
				fmt.Sprintf("/user/%s/review", aliceUsername), reviewBody), aliceCookie)

			testutil.Then(t, "the submission is rejected", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
			})
		})
	})
}

// usernameOf finds the caller's username via search from another account.
func usernameOf(t *testing.T, a *app, otherCookie *http.Cookie, query string) string {
	t.Helper()
	rr := a.do(testutil.NewRequest(t, http.MethodGet, "/search?q="+query), otherCookie)
	testutil.AssertStatus(t, rr, http.StatusOK)
	res := testutil.UnmarshalResponse[identityhandler.SearchResponse](t, rr)
	require.NotEmpty(t, res.Results)
	return res.Results[0].Username
}

func TestVoteToggleOverHTTP(t *testing.T) {
	a := newApp(t)
	_, aliceCookie := a.register(t, "Alice", "Smith", "alice@example.com")
	bobUsername, bobCookie := a.register(t, "Bob", "Jones", "bob@example.com")

	rr := a.do(testutil.NewJSONRequest(t, http.MethodPost,
		fmt.Sprintf("/user/%s/review", bobUsername), map[string]any{
			"rating_problem_solving": 3,
			"rating_communication":   3,
			"rating_sociability":     3,
		}), aliceCookie)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	review := testutil.UnmarshalResponse[reviewhandler.ReviewResponse](t, rr)

	vote := func(direction string) *reviewhandler.VoteResponse {
		rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/home/vote", map[string]string{
			"review_id": review.ID,
			"direction": direction,
		}), bobCookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		return testutil.UnmarshalResponse[reviewhandler.VoteResponse](t, rr)
	}

	up := vote("up")
	assert.Equal(t, 1, up.Score)
	assert.Equal(t, "up", up.YourVote)

	retracted := vote("up")
	assert.Equal(t, 0, retracted.Score)
	assert.Equal(t, "none", retracted.YourVote)

	down := vote("down")
	assert.Equal(t, -1, down.Score)
	assert.Equal(t, "down", down.YourVote)

	flipped := vote("up")
	assert.Equal(t, 1, flipped.Score)
	assert.Equal(t, "up", flipped.YourVote)
}

func TestSearchEndpoint(t *testing.T) {
	a := newApp(t)
	_, cookie := a.register(t, "Alice", "Smith", "alice@example.com")
	a.register(t, "Bob", "Jones", "bob@example.com")

	t.Run("blank query is rejected", func(t *testing.T) {
		rr := a.do(testutil.NewRequest(t, http.MethodGet, "/search?q="), cookie)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("matches by name, excluding the caller", func(t *testing.T) {
		rr := a.do(testutil.NewRequest(t, http.MethodGet, "/search?q=bob"), cookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		res := testutil.UnmarshalResponse[identityhandler.SearchResponse](t, rr)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "Bob", res.Results[0].FirstName)

		rr = a.do(testutil.NewRequest(t, http.MethodGet, "/search?q=alice"), cookie)
		res = testutil.UnmarshalResponse[identityhandler.SearchResponse](t, rr)
		assert.Empty(t, res.Results)
	})
}

func TestProfilePage(t *testing.T) {
	a := newApp(t)
	_, aliceCookie := a.register(t, "Alice", "Smith", "alice@example.com")
	bobUsername, bobCookie := a.register(t, "Bob", "Jones", "bob@example.com")

	t.Run("viewing someone else's page", func(t *testing.T) {
		rr := a.do(testutil.NewRequest(t, http.MethodGet, "/user/"+bobUsername), aliceCookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		page := testutil.UnmarshalResponse[profilehandler.PageResponse](t, rr)
		assert.False(t, page.IsSelf)
		assert.Equal(t, "Bob", page.User.FirstName)
		assert.Nil(t, page.YourReview)
	})

	t.Run("viewing your own page", func(t *testing.T) {
		rr := a.do(testutil.NewRequest(t, http.MethodGet, "/user/"+bobUsername), bobCookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		page := testutil.UnmarshalResponse[profilehandler.PageResponse](t, rr)
		assert.True(t, page.IsSelf)
	})

	t.Run("unknown profile", func(t *testing.T) {
		rr := a.do(testutil.NewRequest(t, http.MethodGet, "/user/no-such-user"), aliceCookie)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("bio update round-trips", func(t *testing.T) {
		rr := a.do(testutil.NewJSONRequest(t, http.MethodPost, "/update/bio", map[string]string{
			"bio": "likes distributed systems",
		}), bobCookie)
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = a.do(testutil.NewRequest(t, http.MethodGet, "/user/"+bobUsername), aliceCookie)
		page := testutil.UnmarshalResponse[profilehandler.PageResponse](t, rr)
		assert.Equal(t, "likes distributed systems", page.Profile.Bio)
	})
}

func TestProfilePhotoLifecycle(t *testing.T) {
	a := newApp(t)
	bobUsername, bobCookie := a.register(t, "Bob", "Jones", "bob@example.com")

	t.Run("upload sets the photo", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/update/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := a.do(req, bobCookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		profile := testutil.UnmarshalResponse[profilehandler.ProfileResponse](t, rr)
		assert.True(t, profile.HasPhoto)

		rr = a.do(testutil.NewRequest(t, http.MethodGet, "/user/"+bobUsername+"/photo"), bobCookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("remove clears the photo", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("remove", "true"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/update/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := a.do(req, bobCookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		profile := testutil.UnmarshalResponse[profilehandler.ProfileResponse](t, rr)
		assert.False(t, profile.HasPhoto)

		rr = a.do(testutil.NewRequest(t, http.MethodGet, "/user/"+bobUsername+"/photo"), bobCookie)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestHealthz(t *testing.T) {
	a := newApp(t)
	rr := a.do(testutil.NewRequest(t, http.MethodGet, "/healthz"), nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}
