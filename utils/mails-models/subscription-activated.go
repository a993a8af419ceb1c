package mailsmodels

import (
	"fmt"

	"katiopa-backend/utils"
)

func SubscriptionActivated(email string, planName string) {
	subject := "Subject: Votre abonnement Katiopa est actif \r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #2F54EB; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%;  min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Merci pour votre confiance</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">Votre abonnement <strong>%s</strong> est maintenant actif. Tous les univers inclus dans votre formule sont débloqués.</td>
				</tr>
			</tbody>
		</table>
	</div>
`, planName)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
