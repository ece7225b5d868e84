package notifications

import "fmt"

const bodyStyle = "font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #1a1a1a; max-width: 600px; margin: 0 auto; padding: 20px;"
const cardStyle = "background: #ffffff; padding: 32px; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 12px 12px;"
const footer = `<div style="text-align: center; padding: 20px; color: #9ca3af; font-size: 12px;"><p>Powered by WaitlistPro</p></div>`

func header(gradient, title, subtitle string) string {
	sub := ""
	if subtitle != "" {
		sub = fmt.Sprintf(`<p style="color: rgba(255,255,255,0.9); margin: 8px 0 0 0; font-size: 18px;">%s</p>`, subtitle)
	}
	return fmt.Sprintf(`<div style="background: linear-gradient(135deg, %s); padding: 32px; border-radius: 12px 12px 0 0; text-align: center;"><h1 style="color: white; margin: 0; font-size: 28px;">%s</h1>%s</div>`, gradient, title, sub)
}

func wrap(inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head><meta charset="utf-8"></head><body style="%s">%s%s</body></html>`, bodyStyle, inner, footer)
}

func verificationHTML(waitlistName, verifyURL string) string {
	return wrap(header("#3B82F6 0%, #2563EB 100%", "You're almost in!", "") + fmt.Sprintf(`
		<div style="%s">
			<p style="font-size: 16px; margin-bottom: 24px;">Thanks for joining the <strong>%s</strong> waitlist!</p>
			<p style="font-size: 16px; margin-bottom: 24px;">Click the button below to verify your email and secure your spot:</p>
			<div style="text-align: center; margin: 32px 0;">
				<a href="%s" style="background: #3B82F6; color: white; padding: 14px 32px; text-decoration: none; border-radius: 8px; font-weight: 600; font-size: 16px; display: inline-block;">Verify My Email</a>
			</div>
			<p style="font-size: 14px; color: #6b7280; margin-top: 32px;">If you didn't sign up for this waitlist, you can safely ignore this email.</p>
		</div>`, cardStyle, waitlistName, verifyURL))
}

func welcomeHTML(waitlistName string, position int, referralURL, positionURL string) string {
	return wrap(header("#10B981 0%, #059669 100%", "You're in!", fmt.Sprintf("Position #%d", position)) + fmt.Sprintf(`
		<div style="%s">
			<p style="font-size: 16px; margin-bottom: 24px;">Welcome to the <strong>%s</strong> waitlist! Your email is now verified.</p>
			<div style="background: #f3f4f6; padding: 24px; border-radius: 8px; margin: 24px 0;">
				<h3 style="margin: 0 0 12px 0; font-size: 16px;">Want to move up the line?</h3>
				<p style="margin: 0 0 16px 0; font-size: 14px; color: #4b5563;">Share your unique referral link. For every friend who joins, you'll move up in line!</p>
				<div style="background: white; padding: 12px; border-radius: 6px; border: 1px solid #e5e7eb; word-break: break-all; font-family: monospace; font-size: 13px;">%s</div>
			</div>
			<div style="text-align: center; margin-top: 24px;">
				<a href="%s" style="background: #3B82F6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; font-weight: 600; font-size: 14px; display: inline-block;">Check Your Position</a>
			</div>
		</div>`, cardStyle, waitlistName, referralURL, positionURL))
}

func inviteHTML(waitlistName, customMessage string) string {
	custom := ""
	if customMessage != "" {
		custom = fmt.Sprintf(`<p style="font-size: 16px; margin-bottom: 24px;">%s</p>`, customMessage)
	}
	return wrap(header("#8B5CF6 0%, #7C3AED 100%", "The wait is over!", "") + fmt.Sprintf(`
		<div style="%s">
			<p style="font-size: 16px; margin-bottom: 24px;">Great news! <strong>%s</strong> is now live and you're one of the first to get access.</p>
			%s
			<p style="font-size: 16px; margin-bottom: 24px;">Thanks for being part of our early community. We can't wait to see what you do with it!</p>
		</div>`, cardStyle, waitlistName, custom))
}

func rewardHTML(waitlistName, rewardTitle, rewardDescription string, referralCount int) string {
	return wrap(header("#F59E0B 0%, #D97706 100%", "Reward Unlocked!", "") + fmt.Sprintf(`
		<div style="%s">
			<div style="text-align: center; margin-bottom: 24px;">
				<div style="display: inline-block; background: #FEF3C7; padding: 16px 32px; border-radius: 8px; border: 2px solid #F59E0B;">
					<h2 style="margin: 0; color: #92400E; font-size: 20px;">%s</h2>
				</div>
			</div>
			<p style="font-size: 16px; margin-bottom: 24px; text-align: center;">You referred <strong>%d friends</strong> to %s and unlocked this reward:</p>
			<p style="font-size: 16px; color: #4b5563; text-align: center; margin-bottom: 24px;">%s</p>
			<p style="font-size: 14px; color: #6b7280; text-align: center;">Keep sharing to unlock even more rewards!</p>
		</div>`, cardStyle, rewardTitle, referralCount, waitlistName, rewardDescription))
}
