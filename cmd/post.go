// File: cmd/post.go
package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
	"github.com/xkilldash9x/cafeposter-cli/internal/observability"
	"github.com/xkilldash9x/cafeposter-cli/internal/poster"
	"github.com/xkilldash9x/cafeposter-cli/internal/store"
)

// newPostCmd creates the `post` command: it publishes an article with a
// previously harvested session, without touching a browser.
func newPostCmd(cfg *config.Config) *cobra.Command {
	var (
		account     string
		cafeID      string
		menuID      int
		title       string
		content     string
		contentFile string
		open        string
		tags        []string
		repeat      int

		imageURL    string
		imageName   string
		imageSize   int64
		imageWidth  int
		imageHeight int

		enableComment bool
		enableScrap   bool
		enableCopy    bool
		useAutoSource bool

		trade       bool
		cost        int
		deliveries  []string
		condition   string
		npayRemit   bool
		openPhoneNo bool
	)

	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Publish an article using a harvested session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			if contentFile != "" {
				if content != "" {
					return fmt.Errorf("--content and --content-file are mutually exclusive")
				}
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				content = string(data)
			}

			payload, err := buildPayload(cafeID, menuID, title, content, open, tags,
				enableComment, enableScrap, enableCopy, useAutoSource,
				trade, cost, deliveries, condition, npayRemit, openPhoneNo)
			if err != nil {
				return err
			}
			if imageURL != "" {
				image, err := parseImage(imageURL, imageName, imageSize, imageWidth, imageHeight)
				if err != nil {
					return err
				}
				payload.Image = image
				if payload.Trade != nil {
					payload.Trade.ImageURL = image.URL
				}
			}
			if repeat < 1 {
				return fmt.Errorf("--repeat must be at least 1")
			}

			sessions := store.NewSessions(cfg.Store.SessionsDir, logger)
			hs, err := sessions.Load(account)
			if err != nil {
				return fmt.Errorf("%w; run `cafeposter login` first", err)
			}

			client := poster.NewClient(cfg.Posting, logger)
			sink := store.NewLogSink(cfg.Store.LogsDir, logger)

			successes := 0
			for attempt := 1; attempt <= repeat; attempt++ {
				result, err := client.Submit(ctx, hs, payload)
				if err != nil {
					return err
				}

				rec := store.Record{
					Timestamp:  time.Now(),
					AccountID:  account,
					Title:      payload.Subject,
					Success:    result.Success,
					ArticleID:  result.ArticleID,
					ArticleURL: result.ArticleURL,
					Diagnostic: result.Diagnostic,
				}
				if err := sink.Append(rec); err != nil {
					logger.Warn("Failed to record posting attempt.", zap.Error(err))
				}

				if result.Success {
					successes++
					fmt.Fprintf(cmd.OutOrStdout(), "Published: %s\n", result.ArticleURL)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Attempt %d failed: %s\n", attempt, result.Diagnostic)
				}
			}

			if successes == 0 {
				return fmt.Errorf("all %d posting attempts failed", repeat)
			}
			return nil
		},
	}

	postCmd.Flags().StringVar(&account, "account", "", "Account id whose session publishes the article")
	postCmd.Flags().StringVar(&cafeID, "cafe-id", "", "Target community id")
	postCmd.Flags().IntVar(&menuID, "menu-id", 0, "Target board id within the community")
	postCmd.Flags().StringVar(&title, "title", "", "Article title")
	postCmd.Flags().StringVar(&content, "content", "", "Article body text")
	postCmd.Flags().StringVar(&contentFile, "content-file", "", "Read the article body from this file")
	postCmd.Flags().StringVar(&open, "open", "public", "Visibility: public, members or private")
	postCmd.Flags().StringSliceVar(&tags, "tag", nil, "Article tag (repeatable)")
	postCmd.Flags().IntVar(&repeat, "repeat", 1, "Publish the same article this many times")

	postCmd.Flags().BoolVar(&enableComment, "comments", true, "Allow comments")
	postCmd.Flags().BoolVar(&enableScrap, "scrap", true, "Allow scrapping")
	postCmd.Flags().BoolVar(&enableCopy, "copy", true, "Allow copying")
	postCmd.Flags().BoolVar(&useAutoSource, "auto-source", false, "Attach the automatic source line")

	postCmd.Flags().StringVar(&imageURL, "image-url", "", "Embed a previously uploaded CDN image by URL")
	postCmd.Flags().StringVar(&imageName, "image-name", "", "File name shown for the embedded image")
	postCmd.Flags().Int64Var(&imageSize, "image-size", 0, "Byte size of the embedded image")
	postCmd.Flags().IntVar(&imageWidth, "image-width", 0, "Display width of the embedded image")
	postCmd.Flags().IntVar(&imageHeight, "image-height", 0, "Display height of the embedded image")

	postCmd.Flags().BoolVar(&trade, "trade", false, "Publish as a trade listing")
	postCmd.Flags().IntVar(&cost, "cost", 0, "Trade price")
	postCmd.Flags().StringSliceVar(&deliveries, "delivery", []string{"meetup"}, "Trade delivery: meetup, parcel or online (repeatable)")
	postCmd.Flags().StringVar(&condition, "condition", "new", "Trade item condition: new, almost-new or used")
	postCmd.Flags().BoolVar(&npayRemit, "npay-remit", true, "Allow wallet transfer payments")
	postCmd.Flags().BoolVar(&openPhoneNo, "open-phone", false, "Show the seller's phone number")

	_ = postCmd.MarkFlagRequired("account")
	_ = postCmd.MarkFlagRequired("cafe-id")
	_ = postCmd.MarkFlagRequired("menu-id")
	_ = postCmd.MarkFlagRequired("title")
	return postCmd
}

// buildPayload translates the flag surface into a validated payload.
func buildPayload(cafeID string, menuID int, title, content, open string, tags []string,
	enableComment, enableScrap, enableCopy, useAutoSource bool,
	trade bool, cost int, deliveries []string, condition string, npayRemit, openPhoneNo bool) (*poster.Payload, error) {

	openSetting, err := parseOpenSetting(open)
	if err != nil {
		return nil, err
	}

	payload := &poster.Payload{
		CafeID:        cafeID,
		MenuID:        menuID,
		Subject:       title,
		Content:       content,
		Open:          openSetting,
		EnableComment: enableComment,
		EnableScrap:   enableScrap,
		EnableCopy:    enableCopy,
		UseAutoSource: useAutoSource,
		Tags:          tags,
	}

	if trade {
		deliveryTypes, err := parseDeliveries(deliveries)
		if err != nil {
			return nil, err
		}
		cond, err := parseCondition(condition)
		if err != nil {
			return nil, err
		}
		payload.Trade = &poster.TradeOptions{
			Cost:          cost,
			DeliveryTypes: deliveryTypes,
			Condition:     cond,
			NpayRemit:     npayRemit,
			OpenPhoneNo:   openPhoneNo,
		}
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// parseImage turns a CDN image URL into the attachment reference the editor
// document embeds. The bytes are never uploaded here; the URL must already be
// hosted on the platform's image CDN.
func parseImage(rawURL, name string, size int64, width, height int) (*poster.ImageAttachment, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("image url %q is not an absolute URL", rawURL)
	}
	if name == "" {
		name = path.Base(u.Path)
	}
	return &poster.ImageAttachment{
		URL:      rawURL,
		Path:     u.Path,
		Domain:   u.Scheme + "://" + u.Host,
		FileName: name,
		FileSize: size,
		Width:    width,
		Height:   height,
	}, nil
}

func parseOpenSetting(open string) (poster.OpenSetting, error) {
	switch open {
	case "public":
		return poster.OpenPublic, nil
	case "members":
		return poster.OpenMembers, nil
	case "private":
		return poster.OpenPrivate, nil
	}
	return "", fmt.Errorf("unknown visibility %q (expected public, members or private)", open)
}

func parseDeliveries(deliveries []string) ([]poster.DeliveryType, error) {
	var out []poster.DeliveryType
	for _, d := range deliveries {
		switch d {
		case "meetup":
			out = append(out, poster.DeliveryMeetup)
		case "parcel":
			out = append(out, poster.DeliveryParcel)
		case "online":
			out = append(out, poster.DeliveryOnline)
		default:
			return nil, fmt.Errorf("unknown delivery type %q (expected meetup, parcel or online)", d)
		}
	}
	return out, nil
}

func parseCondition(condition string) (poster.ProductCondition, error) {
	switch condition {
	case "new":
		return poster.ConditionNew, nil
	case "almost-new":
		return poster.ConditionAlmostNew, nil
	case "used":
		return poster.ConditionUsed, nil
	}
	return "", fmt.Errorf("unknown condition %q (expected new, almost-new or used)", condition)
}
