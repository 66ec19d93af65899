package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/teemow/calbridge/internal/apierror"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// Profile is the subset of the OpenID userinfo response the credential
// store keeps.
type Profile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// FetchProfile retrieves the user's profile with a freshly issued access
// token. The subject id is the upsert key for the credential store, so a
// response without one is treated as a failure.
func (f *Flow) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.userinfoURL, nil)
	if err != nil {
		return Profile{}, apierror.ProfileFetchFailed(err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := f.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Profile{}, apierror.ProfileFetchFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Profile{}, apierror.ProfileFetchFailed(
			fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, body))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, apierror.ProfileFetchFailed(fmt.Errorf("failed to parse userinfo: %w", err))
	}
	if profile.Subject == "" {
		return Profile{}, apierror.ProfileFetchFailed(fmt.Errorf("userinfo response missing subject id"))
	}

	return profile, nil
}
