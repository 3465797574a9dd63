package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plantify/plantify-go/account"
)

// ProfileOptions holds the profile fields to change
type ProfileOptions struct {
	FirstName string
	LastName  string
	Phone     string
	Bio       string
	ImagePath string
}

func (o *ProfileOptions) changed() bool {
	return o.FirstName != "" || o.LastName != "" || o.Phone != "" || o.Bio != "" || o.ImagePath != ""
}

// NewProfileCommand creates the profile command
func NewProfileCommand(root *RootOptions) *cobra.Command {
	opts := &ProfileOptions{}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the profile of the logged-in user",
		Example: `  # Show the profile
  plantify profile

  # Change the name and upload a picture
  plantify profile --first-name Ada --image ./me.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func(s *Stack) error {
				if !opts.changed() {
					res := s.Account.GetProfile(cmd.Context())
					if !res.OK() {
						return failure(res.Failure)
					}
					return printJSON(cmd.OutOrStdout(), res.Data)
				}

				update := account.ProfileUpdate{
					FirstName: opts.FirstName,
					LastName:  opts.LastName,
					Phone:     opts.Phone,
					Bio:       opts.Bio,
				}
				if opts.ImagePath != "" {
					img, err := readImage(opts.ImagePath)
					if err != nil {
						return err
					}
					update.Image = &account.Image{Name: img.name, ContentType: img.contentType, Data: img.data}
				}

				res := s.Account.UpdateProfile(cmd.Context(), update)
				if !res.OK() {
					return failure(res.Failure)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return printJSON(cmd.OutOrStdout(), res.Data)
			})
		},
	}

	cmd.Flags().StringVar(&opts.FirstName, "first-name", "", "New first name")
	cmd.Flags().StringVar(&opts.LastName, "last-name", "", "New last name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "New 10-digit phone number")
	cmd.Flags().StringVar(&opts.Bio, "bio", "", "New bio")
	cmd.Flags().StringVar(&opts.ImagePath, "image", "", "Path of a new profile picture")

	return cmd
}

type imageFile struct {
	name        string
	contentType string
	data        []byte
	path        string
}

func readImage(path string) (*imageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &imageFile{
		name:        filepath.Base(path),
		contentType: mime.TypeByExtension(filepath.Ext(path)),
		data:        data,
		path:        abs,
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
