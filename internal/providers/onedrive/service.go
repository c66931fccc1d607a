package onedrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"photofeed-backend/internal/apperr"
	"photofeed-backend/internal/telemetry"
	"photofeed-backend/pkg/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// childFields is the $select list used when listing a folder; no content is fetched
const childFields = "id,name,createdDateTime,lastModifiedDateTime,file,folder,photo,image"

// Service provides all OneDrive operations in one place
type Service struct {
	httpClient *http.Client
	baseURL    string
	baseScheme string
	baseHost   string
}

// NewOneDriveService creates a new OneDrive service against the given Graph base URL
func NewOneDriveService(httpClient *http.Client, baseURL string) *Service {
	s := &Service{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	if u, err := url.Parse(s.baseURL); err == nil {
		s.baseScheme, s.baseHost = u.Scheme, u.Host
	}
	return s
}

// FindFolderByName searches the drive for a folder whose name matches exactly.
// Search hits that are files or only partial matches are skipped; the first folder wins.
// Returns nil when no folder matches.
func (s *Service) FindFolderByName(ctx context.Context, token *oauth2.Token, folderName string) (*models.CloudItem, error) {
	// OData string literals escape a quote by doubling it
	query := url.PathEscape(strings.ReplaceAll(folderName, "'", "''"))
	apiURL := fmt.Sprintf("%s/me/drive/root/search(q='%s')", s.baseURL, query)

	for apiURL != "" {
		var page APIResponse
		if err := s.getJSON(ctx, "search", apiURL, token, &page); err != nil {
			return nil, err
		}

		for _, driveItem := range page.Value {
			if driveItem.Name == folderName && driveItem.Folder != nil {
				return convertDriveItemToCloudItem(driveItem), nil
			}
		}
		if page.NextLink != "" {
			if err := s.checkNextLink(page.NextLink); err != nil {
				return nil, err
			}
		}
		apiURL = page.NextLink
	}

	return nil, nil
}

// ListFolderContents lists one page of a folder's direct children.
// When nextPageToken is set it is the @odata.nextLink of the previous page and is used verbatim.
func (s *Service) ListFolderContents(ctx context.Context, item *models.CloudItem, token *oauth2.Token, pageSize int, nextPageToken string) ([]*models.CloudItem, string, error) {
	apiURL := nextPageToken
	if apiURL != "" {
		if err := s.checkNextLink(apiURL); err != nil {
			return nil, "", err
		}
	} else {
		params := url.Values{}
		if pageSize > 0 {
			params.Add("$top", fmt.Sprintf("%d", pageSize))
		}
		params.Add("$select", childFields)
		apiURL = fmt.Sprintf("%s/me/drive/items/%s/children?%s", s.baseURL, url.PathEscape(item.ID), params.Encode())
	}

	var page APIResponse
	if err := s.getJSON(ctx, "list_children", apiURL, token, &page); err != nil {
		return nil, "", err
	}

	items := make([]*models.CloudItem, 0, len(page.Value))
	for _, driveItem := range page.Value {
		items = append(items, convertDriveItemToCloudItem(driveItem))
	}

	return items, page.NextLink, nil
}

// GetFileStream downloads the raw content of an item. Graph answers with a redirect to
// a pre-authenticated URL; the client follows it and drops the bearer header on the way.
func (s *Service) GetFileStream(ctx context.Context, itemID string, token *oauth2.Token) (io.ReadCloser, error) {
	apiURL := fmt.Sprintf("%s/me/drive/items/%s/content", s.baseURL, url.PathEscape(itemID))

	resp, err := s.do(ctx, apiURL, token)
	if err != nil {
		telemetry.GraphRequests.WithLabelValues("download", telemetry.OutcomeFailure).Inc()
		return nil, apperr.Upstream("failed to fetch image").WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		telemetry.GraphRequests.WithLabelValues("download", telemetry.OutcomeFailure).Inc()
		return nil, upstreamStatusError("download", apiURL, resp)
	}

	telemetry.GraphRequests.WithLabelValues("download", telemetry.OutcomeSuccess).Inc()
	return resp.Body, nil
}

// getJSON performs an authorized GET and decodes a successful JSON body into out
func (s *Service) getJSON(ctx context.Context, operation, apiURL string, token *oauth2.Token, out interface{}) error {
	resp, err := s.do(ctx, apiURL, token)
	if err != nil {
		telemetry.GraphRequests.WithLabelValues(operation, telemetry.OutcomeFailure).Inc()
		return apperr.Upstream("failed to execute " + operation + " request").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		telemetry.GraphRequests.WithLabelValues(operation, telemetry.OutcomeFailure).Inc()
		return upstreamStatusError(operation, apiURL, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		telemetry.GraphRequests.WithLabelValues(operation, telemetry.OutcomeFailure).Inc()
		return apperr.Upstream("failed to decode " + operation + " response").WithCause(err)
	}

	telemetry.GraphRequests.WithLabelValues(operation, telemetry.OutcomeSuccess).Inc()
	return nil
}

// checkNextLink rejects @odata.nextLink values that leave the Graph API origin,
// since the bearer token is attached to every follow-up request
func (s *Service) checkNextLink(link string) error {
	u, err := url.Parse(link)
	if err != nil || s.baseHost == "" ||
		!strings.EqualFold(u.Scheme, s.baseScheme) || !strings.EqualFold(u.Host, s.baseHost) {
		log.WithField("nextLink", link).Error("OneDrive returned a next page link outside the Graph API")
		return apperr.Upstream("OneDrive returned an unexpected next page link").
			WithCause(fmt.Errorf("next link %q does not match %s://%s", link, s.baseScheme, s.baseHost))
	}
	return nil
}

func (s *Service) do(ctx context.Context, apiURL string, token *oauth2.Token) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	return s.httpClient.Do(req)
}

// upstreamStatusError logs the Graph error body and wraps it so it never reaches clients
func upstreamStatusError(operation, apiURL string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var apiErr APIError
	_ = json.Unmarshal(body, &apiErr)

	log.WithFields(log.Fields{
		"operation": operation,
		"status":    resp.StatusCode,
		"url":       apiURL,
		"code":      apiErr.Error.Code,
	}).Error("OneDrive API error")

	return apperr.Upstream(fmt.Sprintf("OneDrive %s failed with status %d", operation, resp.StatusCode)).
		WithCause(fmt.Errorf("OneDrive API error (status %d) at URL '%s': %s", resp.StatusCode, apiURL, body))
}

// convertDriveItemToCloudItem converts a OneDrive DriveItem to CloudItem format
func convertDriveItemToCloudItem(item DriveItem) *models.CloudItem {
	cloudItem := &models.CloudItem{
		ID:         item.ID,
		Name:       item.Name,
		IsFolder:   item.Folder != nil,
		IsFile:     item.File != nil,
		Provider:   "onedrive",
		CreatedAt:  item.CreatedDateTime,
		ModifiedAt: item.LastModifiedDateTime,
	}

	if item.File != nil {
		cloudItem.MimeType = item.File.MimeType
	}
	if item.Image != nil {
		cloudItem.Width = item.Image.Width
		cloudItem.Height = item.Image.Height
	}
	if item.Photo != nil {
		cloudItem.TakenAt = item.Photo.TakenDateTime
	}

	return cloudItem
}
