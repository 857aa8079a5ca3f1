package menu

import (
	"fmt"

	"ivr-service/internal/domain/ivr"
	"ivr-service/internal/domain/menu"
)

const digits = "0,1,2,3,4,5,6,7,8,9"

// Builder maps engine decisions to the JSON menu descriptors the PBX
// understands. It is pure: all state lives in the engine, all wording here.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build returns the menu descriptor for a decision. Every DecisionKind has
// a menu; an unmapped kind falls back to the system error menu.
func (b *Builder) Build(d ivr.Decision) menu.Descriptor {
	switch d.Kind {
	case ivr.DecideOfferRegistration:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "newCustomer",
			Times: 1, Timeout: 10, EnabledKeys: "1,2", SetMusic: "no",
			Files: []menu.File{{
				Text:          "שלום וברוך הבא. נראה שאין לך עדיין מנוי במערכת שלנו. לחץ 1 להצטרפות למערכת, או לחץ 2 לחזרה לתפריט הקודם.",
				ActivatedKeys: "1,2",
			}},
		}

	case ivr.DecidePromptNationalID:
		return menu.Descriptor{
			Type: "getDTMF", Name: "newCustomerID",
			Max: 10, Min: intPtr(8), Timeout: 30,
			ConfirmType: "digits", SetMusic: "no",
			Files: []menu.File{{
				Text:          "אנא הקש תעודת זהות (8–10 ספרות).",
				ActivatedKeys: digits,
			}},
		}

	case ivr.DecidePromptOwnerAge:
		return menu.Descriptor{
			Type: "getDTMF", Name: "ownerAge",
			Max: 2, Min: intPtr(1), Timeout: 20, ConfirmType: "number",
			Files: []menu.File{{
				Text:          "אנא הקש גיל בעל העסק (שתי ספרות).",
				ActivatedKeys: digits,
			}},
		}

	case ivr.DecidePromptGender:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "gender",
			Times: 1, Timeout: 15, EnabledKeys: "1,2",
			Files: []menu.File{{
				Text:          "בחר מין: לחץ 1 לזכר, 2 לנקבה.",
				ActivatedKeys: "1,2",
			}},
		}

	case ivr.DecideRegistrationFailed:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "registrationFail",
			Times: 1, Timeout: 7, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          "הרשמה נכשלה. לחץ 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "0",
			}},
		}

	case ivr.DecidePromptChildCount:
		return menu.Descriptor{
			Type: "getDTMF", Name: "numChildren",
			Max: 2, Min: intPtr(1), Timeout: 20, ConfirmType: "number",
			Files: []menu.File{{
				Text:          "אנא הכנס את מספר הילדים.",
				ActivatedKeys: digits,
			}},
		}

	case ivr.DecidePromptChildBirthYear:
		return b.childBirthYearMenu(d.ChildIndex)

	case ivr.DecidePromptSpouseWorkplaces:
		return b.spouseWorkplacesMenu(d.SpouseNum)

	case ivr.DecideDetailsUpdated:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "detailsUpdated",
			Times: 1, Timeout: 10, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          "הפרטים עודכנו בהצלחה. לחץ 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "0",
			}},
		}

	case ivr.DecidePromptReceiptAmount:
		return menu.Descriptor{
			Type: "getDTMF", Name: "receiptAmount",
			Max: 7, Min: intPtr(1), Timeout: 30, ConfirmType: "number",
			Files: []menu.File{{
				Text:          "הקש סכום קבלה בשקלים (ללא אגורות).",
				ActivatedKeys: digits,
			}},
		}

	case ivr.DecideInvalidAmount:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "invalidAmount",
			Times: 1, Timeout: 10, EnabledKeys: "1,0",
			Files: []menu.File{{
				Text:          "סכום לא חוקי. לחץ 1 לנסות שוב או 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "1,0",
			}},
		}

	case ivr.DecidePromptClientPhone:
		return menu.Descriptor{
			Type: "getDTMF", Name: "clientPhone",
			Max: 11, Min: intPtr(9), Timeout: 30, ConfirmType: "digits",
			Files: []menu.File{{
				Text:          "הקש מספר טלפון של הלקוח (9–11 ספרות).",
				ActivatedKeys: digits,
			}},
		}

	case ivr.DecidePromptClientID:
		return menu.Descriptor{
			Type: "getDTMF", Name: "clientIdNumber",
			Max: 10, Min: intPtr(0), Timeout: 20, ConfirmType: "digits",
			SkipKey: "#", SkipValue: strPtr(""), SetMusic: "no",
			Files: []menu.File{{
				Text:          "הקש תעודת זהות של הלקוח או לחץ # לדילוג.",
				ActivatedKeys: digits + ",#",
			}},
		}

	case ivr.DecidePromptSaveContact:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "saveContactChoice",
			Times: 1, Timeout: 15, EnabledKeys: "1,2",
			Files: []menu.File{{
				Text:          "לשמור את הלקוח באנשי קשר? לחץ 1 לשמירה, 2 להמשך בלי שמירה.",
				ActivatedKeys: "1,2",
			}},
		}

	case ivr.DecidePromptDescription:
		return menu.Descriptor{
			Type: "getDTMF", Name: "receiptDescription",
			Max: 20, Min: intPtr(1), Timeout: 30, ConfirmType: "digits",
			SkipKey: "#", SkipValue: strPtr("NO_DESCRIPTION"),
			Files: []menu.File{{
				Text:          "הקש קוד תיאור קבלה או לחץ # לדילוג.",
				ActivatedKeys: digits + ",#",
			}},
		}

	case ivr.DecideReceiptSuccess:
		docNum := d.DocNum
		if docNum == "" {
			docNum = "לא זמין"
		}
		return menu.Descriptor{
			Type: "simpleMenu", Name: "receiptSuccess",
			Times: 1, Timeout: 15, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          fmt.Sprintf("הקבלה נוצרה בהצלחה. מספר: %s. לחץ 0 לחזרה לתפריט הראשי.", docNum),
				ActivatedKeys: "0",
			}},
		}

	case ivr.DecideReceiptFailed:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "receiptFailed",
			Times: 1, Timeout: 15, EnabledKeys: "1,0",
			Files: []menu.File{{
				Text:          "שגיאה ביצירת הקבלה. לחץ 1 לנסות שוב או 0 לתפריט הראשי.",
				ActivatedKeys: "1,0",
			}},
		}

	case ivr.DecidePromptCancelReceiptID:
		return menu.Descriptor{
			Type: "getDTMF", Name: "cancelReceiptId",
			Max: 10, Min: intPtr(1), Timeout: 30, ConfirmType: "digits",
			Files: []menu.File{{
				Text:          "אנא הכנס את מספר הקבלה לביטול.",
				ActivatedKeys: digits,
			}},
		}

	case ivr.DecideReceiptCancelled:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "receiptCancelled",
			Times: 1, Timeout: 15, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          fmt.Sprintf("הקבלה מספר %s בוטלה בהצלחה. לחץ 0 לחזרה לתפריט הראשי.", d.DocNum),
				ActivatedKeys: "0",
			}},
		}

	case ivr.DecideReceiptNotFound:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "receiptNotFound",
			Times: 1, Timeout: 10, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          "הקבלה לא נמצאה. לחץ 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "0",
			}},
		}

	case ivr.DecideMainMenu:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "mainMenu",
			Times: 3, Timeout: 15, EnabledKeys: "1,2,3,4,5,6,0", SetMusic: "yes",
			Files: []menu.File{{
				Text:          "שלום וברוך הבא למערכת השירותים שלנו. לחץ 1 להנפקת קבלה, לחץ 2 לביטול קבלה, לחץ 3 לעדכון פרטים אישיים, לחץ 4 לשמיעת זכויות מגיעות, לחץ 5 להשארת הודעה, לחץ 6 לבקשת דיווח שנתי, לחץ 0 לחזרה.",
				ActivatedKeys: "1,2,3,4,5,6,0",
			}},
		}

	case ivr.DecideRenewSubscription:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "renewSubscription",
			Times: 1, Timeout: 10, EnabledKeys: "1,2", SetMusic: "no",
			Files: []menu.File{{
				Text:          "המנוי שלך פג תוקף. לחץ 1 לחידוש המנוי, או לחץ 2 לחזרה לתפריט הקודם.",
				ActivatedKeys: "1,2",
			}},
		}

	case ivr.DecideSubscriptionRenewed:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "subscriptionRenewed",
			Times: 1, Timeout: 10, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          "המנוי חודש בהצלחה. לחץ 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "0",
			}},
		}

	case ivr.DecideBenefits:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "benefitsMenu",
			Times: 1, Timeout: 30, EnabledKeys: "1,0",
			Files: []menu.File{{
				Text:          "על בסיס הנתונים שלך, אתה זכאי למענק עבודה בסך 2000 שקל ולדמי לידה בסך 1500 שקל. לחץ 1 לפרטים נוספים או 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "1,0",
			}},
		}

	case ivr.DecidePromptMessage:
		return menu.Descriptor{
			Type: "record", Name: "customerMessage",
			Max: 180, Min: intPtr(3), Confirm: "confirmOnly",
			FileName: d.FileName,
			Files: []menu.File{{
				Text:          "אנא השאר את ההודעה שלך לאחר הצפצוף. לחץ # לסיום ההקלטה.",
				ActivatedKeys: "NONE",
			}},
		}

	case ivr.DecideMessageReceived:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "messageReceived",
			Times: 1, Timeout: 10, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          "ההודעה התקבלה. נחזור אליך תוך 48 שעות. לחץ 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "0",
			}},
		}

	case ivr.DecideAnnualReportOffer:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "annualReport",
			Times: 1, Timeout: 15, EnabledKeys: "1,0",
			Files: []menu.File{{
				Text:          "הדיווח השנתי שלך יישלח אליך בהודעת SMS תוך 24 שעות. לחץ 1 לאישור או 0 לביטול.",
				ActivatedKeys: "1,0",
			}},
		}

	case ivr.DecideReportRequested:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "reportRequested",
			Times: 1, Timeout: 10, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          "בקשת הדיווח התקבלה. הדיווח יישלח אליך בהודעת SMS תוך 24 שעות. לחץ 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "0",
			}},
		}

	case ivr.DecideInvalidChoice:
		return menu.Descriptor{
			Type: "simpleMenu", Name: "invalidChoice",
			Times: 1, Timeout: 5, EnabledKeys: "0",
			Files: []menu.File{{
				Text:          "לא התקבלה בחירה. לחץ 0 לחזרה לתפריט הראשי.",
				ActivatedKeys: "0",
			}},
		}

	default:
		return b.systemErrorMenu()
	}
}

func (b *Builder) childBirthYearMenu(index int) menu.Descriptor {
	text := "אנא הכנס את שנת הלידה של הילד הראשון (4 ספרות)."
	if index > 1 {
		text = fmt.Sprintf("אנא הכנס את שנת הלידה של ילד מספר %d (4 ספרות).", index)
	}
	return menu.Descriptor{
		Type: "getDTMF", Name: ivr.ChildBirthYearStep(index),
		Max: 4, Min: intPtr(4), Timeout: 20, ConfirmType: "number",
		Files: []menu.File{{Text: text, ActivatedKeys: digits}},
	}
}

func (b *Builder) spouseWorkplacesMenu(spouseNum int) menu.Descriptor {
	spouseText := "הראשון"
	if spouseNum == 2 {
		spouseText = "השני"
	}
	return menu.Descriptor{
		Type: "getDTMF", Name: fmt.Sprintf("spouse%d_workplaces", spouseNum),
		Max: 2, Min: intPtr(1), Timeout: 20, ConfirmType: "number",
		Files: []menu.File{{
			Text:          fmt.Sprintf("אנא הכנס את מספר מקומות העבודה של בן/בת הזוג %s.", spouseText),
			ActivatedKeys: digits,
		}},
	}
}

func (b *Builder) systemErrorMenu() menu.Descriptor {
	return menu.Descriptor{
		Type: "simpleMenu", Name: "systemError",
		Times: 1, Timeout: 10, EnabledKeys: "0", SetMusic: "no",
		Files: []menu.File{{
			Text:          "אירעה שגיאה במערכת. לחץ 0 לחזרה לתפריט הראשי.",
			ActivatedKeys: "0",
		}},
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
