package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/odvcencio/simplegit/pkg/object"
	"github.com/odvcencio/simplegit/pkg/repo"
)

// showDocument is the YAML view of a commit.
type showDocument struct {
	Commit    string            `yaml:"commit"`
	Parents   []string          `yaml:"parents,omitempty"`
	Author    string            `yaml:"author"`
	Timestamp string            `yaml:"timestamp"`
	Message   string            `yaml:"message"`
	Signed    bool              `yaml:"signed"`
	Snapshot  map[string]string `yaml:"snapshot"`
	Changes   []string          `yaml:"changes,omitempty"`
}

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [branch|commit]",
		Short: "Show commit metadata and changed files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			target := "HEAD"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				target = strings.TrimSpace(args[0])
			}

			h, err := resolveCommitish(r, target)
			if err != nil {
				return err
			}
			commit, err := r.ReadCommit(h)
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}

			before := object.Snapshot{}
			if len(commit.Parents) > 0 {
				parent, err := r.ReadCommit(commit.Parents[0])
				if err != nil {
					return fmt.Errorf("show: parent: %w", err)
				}
				before = parent.Snapshot
			}
			changes := summarizeSnapshotChanges(before, commit.Snapshot)

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				doc := showDocument{
					Commit:    string(h),
					Author:    commit.Author,
					Timestamp: commit.Timestamp,
					Message:   commit.Message,
					Signed:    commit.Signature != "",
					Snapshot:  make(map[string]string, len(commit.Snapshot)),
					Changes:   changes,
				}
				for _, p := range commit.Parents {
					doc.Parents = append(doc.Parents, string(p))
				}
				for path, blob := range commit.Snapshot {
					doc.Snapshot[path] = string(blob)
				}
				data, err := yaml.Marshal(doc)
				if err != nil {
					return fmt.Errorf("show: encode yaml: %w", err)
				}
				_, err = out.Write(data)
				return err
			case "text", "":
			default:
				return fmt.Errorf("show: unknown format %q (want text or yaml)", format)
			}

			fmt.Fprintf(out, "commit %s\n", h)
			if commit.IsMerge() {
				fmt.Fprintf(out, "Merge:  %s %s\n", commit.Parents[0].Short(), commit.Parents[1].Short())
			}
			fmt.Fprintf(out, "Author: %s\n", commit.Author)
			fmt.Fprintf(out, "Date:   %s\n", commit.Timestamp)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "    %s\n", commit.Message)
			fmt.Fprintln(out)

			if len(changes) == 0 {
				return nil
			}
			fmt.Fprintln(out, "Changes:")
			for _, line := range changes {
				fmt.Fprintf(out, "  %s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")
	return cmd
}

// resolveCommitish accepts a branch name, HEAD, or a full commit hash.
func resolveCommitish(r *repo.Repo, target string) (object.Hash, error) {
	if object.ValidHash(object.Hash(target)) {
		return object.Hash(target), nil
	}
	h, err := r.ResolveRef(target)
	if err != nil {
		return "", err
	}
	if h == "" {
		return "", fmt.Errorf("%s: %w", target, repo.ErrUnbornBranch)
	}
	return h, nil
}

// summarizeSnapshotChanges lists "A path", "M path" and "D path" lines for
// the difference between two snapshots, sorted by path.
func summarizeSnapshotChanges(before, after object.Snapshot) []string {
	paths := make(map[string]struct{}, len(before)+len(after))
	for p := range before {
		paths[p] = struct{}{}
	}
	for p := range after {
		paths[p] = struct{}{}
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var lines []string
	for _, p := range sorted {
		b, inBefore := before[p]
		a, inAfter := after[p]
		switch {
		case !inBefore:
			lines = append(lines, "A "+p)
		case !inAfter:
			lines = append(lines, "D "+p)
		case a != b:
			lines = append(lines, "M "+p)
		}
	}
	return lines
}
