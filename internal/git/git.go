// Package git provides a shell-out wrapper for the git CLI.
//
// Tickets record the branch and commit their work lives on. This package
// shells out to the git binary in a working directory and returns its
// trimmed output.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode"
)

// BranchPrefix is prepended to generated branch names.
const BranchPrefix = "ticket/"

const maxSlugLength = 48

// Repo runs git commands in Dir. An empty Dir means the current
// directory.
type Repo struct {
	Dir string
}

// Available checks if the git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// HeadCommit returns the full sha of HEAD.
func (r Repo) HeadCommit(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

// CurrentBranch returns the checked-out branch name.
func (r Repo) CurrentBranch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// CreateBranch creates name from the current HEAD and checks it out.
func (r Repo) CreateBranch(ctx context.Context, name string) error {
	_, err := r.run(ctx, "checkout", "-b", name)
	return err
}

// BranchName builds the branch name for a ticket title.
func BranchName(title string) string {
	slug := Slug(title)
	if slug == "" {
		slug = "work"
	}
	return BranchPrefix + slug
}

// Slug lower-cases s and joins its letters and digits with single
// hyphens, cut to a bounded length.
func Slug(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// run executes git and returns trimmed stdout.
func (r Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			return "", fmt.Errorf("git %s: %s", args[0], stderr)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}
