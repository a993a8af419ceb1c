package mailsmodels

import (
	"fmt"

	"katiopa-backend/utils"
)

func Welcome(email string, firstName string) {
	subject := "Subject: Bienvenue sur Katiopa \r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #2F54EB; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%;  min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Bienvenue sur Katiopa, %s !</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">Votre compte est prêt. Ajoutez un profil enfant pour découvrir les premiers univers de jeux éducatifs.</td>
				</tr>
			</tbody>
		</table>
	</div>
`, firstName)

	message := []byte(subject + mime + body)

	utils.SendMail(email, message)
}
