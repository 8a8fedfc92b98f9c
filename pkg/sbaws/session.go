// AWS session shared by the SSM and S3 clients
package sbaws

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

// credentials come from the default chain: ENV (Lambda execution role), shared
// credentials/config files and profiles, then the EC2 instance role.
// empty region means AWS_REGION / profile decides.
func Session(region string) (*session.Session, error) {
	awsConf := aws.Config{}
	if region != "" {
		awsConf.Region = aws.String(region)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            awsConf,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return sess, nil
}
