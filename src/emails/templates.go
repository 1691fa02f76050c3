package emails

import "fmt"

const emailHeader = `<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(to right, #0077B5, #00A0DC); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
    <h1 style="color: white; margin: 0; font-size: 28px;">%s</h1>
  </div>
  <div style="background-color: #ffffff; padding: 30px; border-radius: 0 0 10px 10px; box-shadow: 0 4px 10px rgba(0,0,0,0.1);">`

const emailFooter = `
    <p>Best regards,<br>The UnLinked Team</p>
  </div>
</body>
</html>`

func button(url, label string) string {
	return fmt.Sprintf(`
    <div style="text-align: center; margin: 30px 0;">
      <a href="%s" style="background-color: #0077B5; color: white; padding: 14px 28px; text-decoration: none; border-radius: 30px; font-weight: bold; font-size: 16px;">%s</a>
    </div>`, url, label)
}

func welcomeEmailTemplate(name, profileURL string) string {
	return fmt.Sprintf(emailHeader, "Welcome to UnLinked!") + fmt.Sprintf(`
    <p style="font-size: 18px; color: #0077B5;"><strong>Hello %s,</strong></p>
    <p>We're thrilled to have you join our professional community! UnLinked is your platform to connect, learn, and grow in your career.</p>
    <div style="background-color: #f3f6f8; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <p style="font-size: 16px; margin: 0;"><strong>Here's how to get started:</strong></p>
      <ul style="padding-left: 20px;">
        <li>Complete your profile</li>
        <li>Connect with colleagues and friends</li>
        <li>Explore job opportunities</li>
      </ul>
    </div>`, name) + button(profileURL, "Complete Your Profile") + emailFooter
}

func connectionAcceptedEmailTemplate(senderName, recipientName, profileURL string) string {
	return fmt.Sprintf(emailHeader, "Connection Accepted") + fmt.Sprintf(`
    <p style="font-size: 18px; color: #0077B5;"><strong>Hello %s,</strong></p>
    <p><strong>%s</strong> accepted your connection request. You can now see each other's posts and message directly.</p>`,
		senderName, recipientName) + button(profileURL, "View Profile") + emailFooter
}

func commentNotificationEmailTemplate(recipientName, commenterName, postURL, comment string) string {
	return fmt.Sprintf(emailHeader, "New Comment on Your Post") + fmt.Sprintf(`
    <p style="font-size: 18px; color: #0077B5;"><strong>Hello %s,</strong></p>
    <p><strong>%s</strong> commented on your post:</p>
    <div style="background-color: #f3f6f8; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <p style="margin: 0;">%s</p>
    </div>`, recipientName, commenterName, comment) + button(postURL, "View Post") + emailFooter
}

func passwordResetEmailTemplate(name, resetURL string) string {
	return fmt.Sprintf(emailHeader, "Reset Your Password") + fmt.Sprintf(`
    <p style="font-size: 18px; color: #0077B5;"><strong>Hello %s,</strong></p>
    <p>We received a request to reset your password for your UnLinked account. To proceed with the password reset, please click the button below:</p>`,
		name) + button(resetURL, "Reset Password") + `
    <div style="background-color: #f3f6f8; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <p style="font-size: 16px; margin: 0;"><strong>Important Information:</strong></p>
      <ul style="padding-left: 20px;">
        <li>This link will expire in 1 hour</li>
        <li>If you didn't request this reset, please ignore this email</li>
        <li>For security reasons, please don't share this link with anyone</li>
      </ul>
    </div>` + emailFooter
}
