package skillsapi

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/skill"
)

// Skill is a remote skill record.
type Skill struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	DisplayTitle  string    `json:"display_title"`
	Source        string    `json:"source"`
	LatestVersion string    `json:"latest_version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SkillVersion is one uploaded revision of a skill.
type SkillVersion struct {
	SkillID     string    `json:"skill_id"`
	Version     string    `json:"version"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Directory   string    `json:"directory"`
	CreatedAt   time.Time `json:"created_at"`
}

type skillPage struct {
	Data    []Skill `json:"data"`
	HasMore bool    `json:"has_more"`
	LastID  string  `json:"last_id"`
}

type versionPage struct {
	Data    []SkillVersion `json:"data"`
	HasMore bool           `json:"has_more"`
	LastID  string         `json:"last_id"`
}

func (c *Client) betaOpts(extra ...option.RequestOption) []option.RequestOption {
	opts := []option.RequestOption{option.WithHeader("anthropic-beta", BetaSkills)}
	return append(opts, extra...)
}

// CreateSkill uploads a package directory as a new skill. The upload carries
// every package file under the directory's base name, the way the service
// expects skill trees to arrive.
func (c *Client) CreateSkill(ctx context.Context, dir, displayTitle string) (*Skill, error) {
	body, contentType, err := packageForm(dir, map[string]string{"display_title": displayTitle})
	if err != nil {
		return nil, err
	}

	var created Skill
	err = c.ExecuteWithRetry(ctx, func() error {
		return c.sdk.Post(ctx, "/v1/skills", bytes.NewReader(body), &created,
			c.betaOpts(option.WithHeader("Content-Type", contentType))...)
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating skill")
	}
	return &created, nil
}

// ListSkills returns all skills, following pagination. source filters to
// "custom" or "anthropic"; empty returns both.
func (c *Client) ListSkills(ctx context.Context, source string) ([]Skill, error) {
	var out []Skill
	afterID := ""
	for {
		opts := c.betaOpts(option.WithQuery("limit", "100"))
		if source != "" {
			opts = append(opts, option.WithQuery("source", source))
		}
		if afterID != "" {
			opts = append(opts, option.WithQuery("after_id", afterID))
		}

		var page skillPage
		err := c.ExecuteWithRetry(ctx, func() error {
			return c.sdk.Get(ctx, "/v1/skills", nil, &page, opts...)
		})
		if err != nil {
			return nil, errors.Wrap(err, "listing skills")
		}

		out = append(out, page.Data...)
		if !page.HasMore || page.LastID == "" {
			return out, nil
		}
		afterID = page.LastID
	}
}

// GetSkill fetches one skill by ID.
func (c *Client) GetSkill(ctx context.Context, skillID string) (*Skill, error) {
	var s Skill
	err := c.ExecuteWithRetry(ctx, func() error {
		return c.sdk.Get(ctx, "/v1/skills/"+url.PathEscape(skillID), nil, &s, c.betaOpts()...)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getting skill %s", skillID)
	}
	return &s, nil
}

// DeleteSkill removes a skill. The service refuses to delete a skill that
// still has versions, so deleteVersions first removes every version. The
// deleted version labels are returned for display.
func (c *Client) DeleteSkill(ctx context.Context, skillID string, deleteVersions bool) ([]string, error) {
	var deleted []string
	if deleteVersions {
		versions, err := c.ListVersions(ctx, skillID)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			if err := c.DeleteVersion(ctx, skillID, v.Version); err != nil {
				return deleted, err
			}
			deleted = append(deleted, v.Version)
			logger.G(ctx).WithField("skill_id", skillID).WithField("version", v.Version).Debug("deleted skill version")
		}
	}

	err := c.ExecuteWithRetry(ctx, func() error {
		return c.sdk.Delete(ctx, "/v1/skills/"+url.PathEscape(skillID), nil, nil, c.betaOpts()...)
	})
	if err != nil {
		return deleted, errors.Wrapf(err, "deleting skill %s", skillID)
	}
	return deleted, nil
}

// CreateVersion uploads a package directory as a new version of an existing
// skill.
func (c *Client) CreateVersion(ctx context.Context, skillID, dir string) (*SkillVersion, error) {
	body, contentType, err := packageForm(dir, nil)
	if err != nil {
		return nil, err
	}

	var created SkillVersion
	err = c.ExecuteWithRetry(ctx, func() error {
		return c.sdk.Post(ctx, "/v1/skills/"+url.PathEscape(skillID)+"/versions", bytes.NewReader(body), &created,
			c.betaOpts(option.WithHeader("Content-Type", contentType))...)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating version of skill %s", skillID)
	}
	return &created, nil
}

// ListVersions returns every version of a skill, following pagination.
func (c *Client) ListVersions(ctx context.Context, skillID string) ([]SkillVersion, error) {
	var out []SkillVersion
	afterID := ""
	for {
		opts := c.betaOpts(option.WithQuery("limit", "100"))
		if afterID != "" {
			opts = append(opts, option.WithQuery("after_id", afterID))
		}

		var page versionPage
		err := c.ExecuteWithRetry(ctx, func() error {
			return c.sdk.Get(ctx, "/v1/skills/"+url.PathEscape(skillID)+"/versions", nil, &page, opts...)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "listing versions of skill %s", skillID)
		}

		out = append(out, page.Data...)
		if !page.HasMore || page.LastID == "" {
			return out, nil
		}
		afterID = page.LastID
	}
}

// GetVersion fetches one version. "latest" resolves through the skill record
// first.
func (c *Client) GetVersion(ctx context.Context, skillID, version string) (*SkillVersion, error) {
	if version == "" || version == "latest" {
		s, err := c.GetSkill(ctx, skillID)
		if err != nil {
			return nil, err
		}
		version = s.LatestVersion
	}

	var v SkillVersion
	err := c.ExecuteWithRetry(ctx, func() error {
		return c.sdk.Get(ctx, "/v1/skills/"+url.PathEscape(skillID)+"/versions/"+url.PathEscape(version), nil, &v, c.betaOpts()...)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getting version %s of skill %s", version, skillID)
	}
	return &v, nil
}

// DeleteVersion removes one version of a skill.
func (c *Client) DeleteVersion(ctx context.Context, skillID, version string) error {
	err := c.ExecuteWithRetry(ctx, func() error {
		return c.sdk.Delete(ctx, "/v1/skills/"+url.PathEscape(skillID)+"/versions/"+url.PathEscape(version), nil, nil, c.betaOpts()...)
	})
	return errors.Wrapf(err, "deleting version %s of skill %s", version, skillID)
}

// packageForm renders a skill package directory as the multipart body the
// create endpoints accept. File names are prefixed with the package
// directory name, so the service reconstructs the same tree.
func packageForm(dir string, fields map[string]string) ([]byte, string, error) {
	pkg, err := skill.Load(dir)
	if err != nil {
		return nil, "", err
	}
	files, err := pkg.Files()
	if err != nil {
		return nil, "", err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", errors.Wrap(err, "resolving package directory")
	}
	prefix := filepath.Base(abs)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", errors.Wrap(err, "writing form field")
		}
	}

	for _, rel := range files {
		part, err := w.CreateFormFile("files[]", prefix+"/"+rel)
		if err != nil {
			return nil, "", errors.Wrapf(err, "adding %s to upload", rel)
		}
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, "", errors.Wrapf(err, "opening %s", rel)
		}
		_, copyErr := io.Copy(part, f)
		f.Close()
		if copyErr != nil {
			return nil, "", errors.Wrapf(copyErr, "reading %s", rel)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "finalizing upload body")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
