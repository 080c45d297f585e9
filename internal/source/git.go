// Package source implements the source-build install path: clone or
// update a checkout of the repository under the installation root,
// then build and install the tools with cargo.
package source

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/foundry-rs/foundryup/internal/errkind"
)

// Git is the interface for the version-control operations the install
// flow needs. Following Go best practices: accept interfaces, return
// structs.
type Git interface {
	// Clone clones url into dir with full history.
	Clone(ctx context.Context, url, dir string) error
	// Checkout switches the checkout in dir to branch, creating a
	// local branch from the remote-tracking ref when needed.
	Checkout(ctx context.Context, dir, branch string) error
	// Pull fast-forwards the current branch in dir from origin.
	Pull(ctx context.Context, dir string) error
}

// Client implements Git using go-git.
type Client struct{}

// NewClient creates a go-git backed client.
func NewClient() *Client {
	return &Client{}
}

// Clone clones url into dir. Failures are fatal VersionControlErrors,
// surfaced verbatim from go-git.
func (c *Client) Clone(ctx context.Context, url, dir string) error {
	_, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL: url,
	})
	if err != nil {
		return errkind.Wrapf(errkind.VersionControl, err, "clone %s", url)
	}
	return nil
}

// Checkout switches dir to branch. When the branch only exists as a
// remote-tracking ref (fresh clone, non-default branch), a local branch
// is created from it first.
func (c *Client) Checkout(ctx context.Context, dir, branch string) error {
	if err := ctx.Err(); err != nil {
		return errkind.Wrap(errkind.VersionControl, err)
	}

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return errkind.Wrapf(errkind.VersionControl, err, "open repository %s", dir)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return errkind.Wrapf(errkind.VersionControl, err, "get worktree")
	}

	localRef := plumbing.NewBranchReferenceName(branch)
	err = worktree.Checkout(&gogit.CheckoutOptions{Branch: localRef})
	if err == nil {
		return nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return errkind.Wrapf(errkind.VersionControl, err, "checkout %s", branch)
	}

	// No local branch yet; resolve the remote-tracking ref and branch
	// off it.
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return errkind.Wrapf(errkind.VersionControl, err, "branch %s not found", branch)
	}

	err = worktree.Checkout(&gogit.CheckoutOptions{
		Hash:   remoteRef.Hash(),
		Branch: localRef,
		Create: true,
	})
	if err != nil {
		return errkind.Wrapf(errkind.VersionControl, err, "checkout %s", branch)
	}

	// Track the remote branch so later pulls fast-forward it.
	err = repo.CreateBranch(&config.Branch{
		Name:   branch,
		Remote: "origin",
		Merge:  localRef,
	})
	if err != nil && !errors.Is(err, gogit.ErrBranchExists) {
		return errkind.Wrapf(errkind.VersionControl, err, "track branch %s", branch)
	}
	return nil
}

// Pull fast-forwards the current branch from origin. An already
// up-to-date checkout is not an error.
func (c *Client) Pull(ctx context.Context, dir string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return errkind.Wrapf(errkind.VersionControl, err, "open repository %s", dir)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return errkind.Wrapf(errkind.VersionControl, err, "get worktree")
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{RemoteName: "origin"})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return errkind.Wrapf(errkind.VersionControl, err, "pull")
	}
	return nil
}

// RemoteURL builds the clone URL for an owner/name repository
// identifier.
func RemoteURL(repo string) string {
	return fmt.Sprintf("https://github.com/%s", repo)
}
