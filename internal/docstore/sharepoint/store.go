// Package sharepoint implements the document store on SharePoint Online
// through its REST API. Folders are server-relative paths such as
// "Documentos compartidos/Reportes"; paths without a leading '/' are
// resolved against the site path.
//
// Authentication uses azidentity: a client secret credential when a secret
// is configured, otherwise the username/password flow of the tenant's public
// client application.
package sharepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"reportetl/internal/docstore"
)

const acceptJSON = "application/json;odata=nometadata"

func init() {
	docstore.Register("sharepoint", func(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
		cred, err := NewCredential(cfg)
		if err != nil {
			return nil, err
		}
		return New(ctx, cfg.SiteURL, cred, ClientConfig{Timeout: cfg.Timeout})
	})
}

// NewCredential picks the azidentity credential for cfg.
func NewCredential(cfg docstore.Config) (azcore.TokenCredential, error) {
	var (
		cred azcore.TokenCredential
		err  error
	)
	switch {
	case cfg.ClientSecret != "":
		cred, err = azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	case cfg.Username != "":
		cred, err = azidentity.NewUsernamePasswordCredential(cfg.TenantID, cfg.ClientID, cfg.Username, cfg.Password, nil)
	default:
		return nil, fmt.Errorf("%w: sharepoint: either client_secret or username/password is required", docstore.ErrAuth)
	}
	if err != nil {
		return nil, authError(err)
	}
	return cred, nil
}

// Store is an authenticated SharePoint site.
type Store struct {
	c        *client
	site     string // scheme://host/sites/x without trailing slash
	sitePath string // /sites/x, or "" for the root site
}

// New binds a Store to siteURL and verifies the credential by loading the
// site's web properties.
func New(ctx context.Context, siteURL string, cred azcore.TokenCredential, cc ClientConfig) (*Store, error) {
	u, err := url.Parse(strings.TrimRight(siteURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("sharepoint: invalid site url %q", siteURL)
	}
	scope := u.Scheme + "://" + u.Host + "/.default"
	s := &Store{
		c:        newClient(cc, cred, scope),
		site:     u.String(),
		sitePath: u.Path,
	}
	var web struct {
		URL   string `json:"Url"`
		Title string `json:"Title"`
	}
	if err := s.getJSON(ctx, s.site+"/_api/web?$select=Url,Title", &web); err != nil {
		if errors.Is(err, docstore.ErrAuth) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: sharepoint: load web: %w", docstore.ErrAuth, err)
	}
	return s, nil
}

// serverRelative resolves p against the site path.
func (s *Store) serverRelative(p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Clean(s.sitePath + "/" + p)
}

// api builds a REST url calling fn with the server-relative path bound as
// the @p alias, so paths with spaces and quotes need no further escaping.
func (s *Store) api(fn, serverRel, suffix string) string {
	lit := "'" + strings.ReplaceAll(serverRel, "'", "''") + "'"
	return s.site + "/_api/web/" + fn + "(@p)" + suffix + "?@p=" + strings.ReplaceAll(url.QueryEscape(lit), "+", "%20")
}

// List returns the file names inside folder, following paging links.
func (s *Store) List(ctx context.Context, folder string) ([]string, error) {
	next := s.api("GetFolderByServerRelativeUrl", s.serverRelative(folder), "/Files") + "&$select=Name"
	var names []string
	for next != "" {
		var page struct {
			Value []struct {
				Name string `json:"Name"`
			} `json:"value"`
			NextLink string `json:"odata.nextLink"`
		}
		if err := s.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("sharepoint: list %s: %w", folder, err)
		}
		for _, f := range page.Value {
			names = append(names, f.Name)
		}
		next = page.NextLink
	}
	return names, nil
}

// Open streams the file content.
func (s *Store) Open(ctx context.Context, folder, name string) (io.ReadCloser, error) {
	u := s.api("GetFileByServerRelativeUrl", s.serverRelative(folder+"/"+name), "/$value")
	resp, err := s.c.do(ctx, http.MethodGet, u, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("sharepoint: open %s/%s: %w", folder, name, err)
	}
	if err := statusError(resp); err != nil {
		return nil, fmt.Errorf("sharepoint: open %s/%s: %w", folder, name, err)
	}
	return resp.Body, nil
}

// Delete removes the file.
func (s *Store) Delete(ctx context.Context, folder, name string) error {
	u := s.api("GetFileByServerRelativeUrl", s.serverRelative(folder+"/"+name), "")
	h := http.Header{}
	h.Set("Accept", acceptJSON)
	h.Set("X-HTTP-Method", "DELETE")
	h.Set("IF-MATCH", "*")
	resp, err := s.c.do(ctx, http.MethodPost, u, nil, h)
	if err != nil {
		return fmt.Errorf("sharepoint: delete %s/%s: %w", folder, name, err)
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return fmt.Errorf("sharepoint: delete %s/%s: %w", folder, name, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *Store) getJSON(ctx context.Context, u string, out any) error {
	h := http.Header{}
	h.Set("Accept", acceptJSON)
	resp, err := s.c.do(ctx, http.MethodGet, u, nil, h)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps a non-2xx response to an error and closes its body.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", docstore.ErrAuth, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", docstore.ErrNotFound, err)
	}
	return err
}

func authError(err error) error {
	return fmt.Errorf("%w: %w", docstore.ErrAuth, err)
}
