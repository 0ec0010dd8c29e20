// Command aws manages the SES template used for password reset emails.
//
//	aws create [-name password-reset]
//	aws delete [-name password-reset]
//	aws send -to a@b.com [-name password-reset] [-username eiz] [-url https://...]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/caarlos0/env/v6"
)

const (
	passwordResetSubject = "Reset your password"
	passwordResetHTML    = `<p>Hi {{username}},</p>
<p>We received a request to reset your password. The link is valid for one hour.</p>
<p><a href="{{passwordResetUrl}}">Reset password</a></p>
<p>If you did not request a reset, ignore this email.</p>`
	passwordResetText = `Hi {{username}},

We received a request to reset your password. The link is valid for one hour:
{{passwordResetUrl}}

If you did not request a reset, ignore this email.`
)

type settings struct {
	AwsRegion    string `env:"AWS_REGION,required"`
	AwsAccessKey string `env:"AWS_ACCESS_KEY,required"`
	AwsSecretKey string `env:"AWS_SECRET_KEY,required"`
	// This address must be verified with Amazon SES.
	EmailSender string `env:"EMAIL_SENDER" envDefault:"no-reply@resetkit.dev"`
}

func main() {
	if len(os.Args) < 2 {
		fail(fmt.Errorf("usage: %s create|delete|send [flags]", os.Args[0]))
	}

	flags := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	name := flags.String("name", "password-reset", "template name")
	to := flags.String("to", "", "recipient of the test email")
	username := flags.String("username", "eiz", "username rendered in the test email")
	url := flags.String("url", "http://localhost:8888/reset-password.html?token=test", "link rendered in the test email")
	flags.Parse(os.Args[2:])

	cfg := settings{}
	if err := env.Parse(&cfg); err != nil {
		fail(err)
	}
	svc := ses.NewFromConfig(loadAwsConfig(cfg))
	ctx := context.Background()

	var result interface{}
	var err error
	switch os.Args[1] {
	case "create":
		result, err = svc.CreateTemplate(ctx, &ses.CreateTemplateInput{
			Template: &types.Template{
				TemplateName: name,
				SubjectPart:  aws.String(passwordResetSubject),
				HtmlPart:     aws.String(passwordResetHTML),
				TextPart:     aws.String(passwordResetText),
			},
		})
	case "delete":
		result, err = svc.DeleteTemplate(ctx, &ses.DeleteTemplateInput{TemplateName: name})
	case "send":
		if *to == "" {
			fail(fmt.Errorf("-to must be set"))
		}
		result, err = sendTemplate(ctx, svc, cfg.EmailSender, *to, *name, *username, *url)
	default:
		fail(fmt.Errorf("unknown command %q", os.Args[1]))
	}
	if err != nil {
		fail(err)
	}

	fmt.Println("Success:")
	fmt.Println(result)
}

func sendTemplate(
	ctx context.Context,
	svc *ses.Client,
	sender string,
	to string,
	name string,
	username string,
	url string,
) (*ses.SendTemplatedEmailOutput, error) {
	data, err := json.Marshal(map[string]string{"username": username, "passwordResetUrl": url})
	if err != nil {
		return nil, err
	}
	return svc.SendTemplatedEmail(ctx, &ses.SendTemplatedEmailInput{
		Source: aws.String(sender),
		Destination: &types.Destination{
			CcAddresses: []string{},
			ToAddresses: []string{to},
		},
		Template:     aws.String(name),
		TemplateData: aws.String(string(data)),
	})
}

func loadAwsConfig(cfg settings) aws.Config {
	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
	)
	if err != nil {
		fail(err)
	}
	return awsCfg
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
