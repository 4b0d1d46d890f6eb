package catalog

import "github.com/raysh454/clauseguard/internal/model"

// Template is a canned explanation used when the language model is not
// available.
type Template struct {
	Meaning        string
	Risk           string
	Beneficiary    string
	Recommendation string
}

var englishTemplates = map[string]Template{
	"liability-cap": {
		"The company limits how much they'll pay if something goes wrong",
		"If they cause ₹10 lakh in damages, you might only recover ₹50,000",
		"The service provider/vendor",
		"Negotiate for higher liability caps or remove this limitation entirely",
	},
	"indemnification": {
		"You agree to pay their legal costs if someone sues them",
		"You could pay crores in legal fees for their mistakes or actions",
		"The other party (they get legal protection at your expense)",
		"Request 'mutual indemnification' where both parties protect each other equally",
	},
	"automatic-renewal": {
		"Contract renews automatically unless you cancel in advance",
		"You might get locked into another year and charged automatically",
		"The vendor (guaranteed recurring revenue)",
		"Request advance notice (60-90 days) and opt-in renewal instead",
	},
	"termination-fee": {
		"You must pay a penalty to end the contract early",
		"Early exit could cost thousands in penalties",
		"The service provider",
		"Negotiate lower penalties or pro-rated refunds for unused services",
	},
	"ip-transfer": {
		"All work you create or contribute becomes their property",
		"You lose ownership of your ideas, designs, or innovations",
		"The company (they own everything)",
		"Retain ownership or negotiate shared IP rights",
	},
	"non-compete": {
		"You cannot work for competitors or start similar business",
		"Limits your career options and business opportunities",
		"Your employer/client",
		"Limit scope (geography, time, specific roles) or remove entirely",
	},
	"arbitration": {
		"Disputes must go to private arbitration, not court",
		"You lose right to jury trial and public court proceedings",
		"Usually the company (arbitration often favors repeat users)",
		"Request mutual arbitration agreement or remove this clause",
	},
	"unilateral-changes": {
		"They can change terms anytime without your consent",
		"Prices, services, or conditions can change at their discretion",
		"The service provider",
		"Require written notice and right to terminate if changes are unfavorable",
	},
	"limited-warranty": {
		"Product/service sold 'as is' with no guarantees",
		"No recourse if product is defective or doesn't work",
		"The seller",
		"Request specific warranties or money-back guarantee",
	},
	"data-rights": {
		"Company can use your data for any purpose indefinitely",
		"Your personal or business data could be sold or misused",
		"The company (monetizes your data)",
		"Limit data usage to specific purposes and request deletion rights",
	},
	"jurisdiction": {
		"Legal disputes must be filed in a specific court/location",
		"You may have to travel far or hire distant lawyers",
		"The party who chose the jurisdiction",
		"Negotiate neutral jurisdiction or your home jurisdiction",
	},
	"confidentiality-burden": {
		"You must keep information secret forever",
		"Permanent obligation that limits your future opportunities",
		"The other party",
		"Set time limits (2-5 years) and define what's actually confidential",
	},
	"payment-terms": {
		"Payment is non-refundable and due upfront",
		"You lose money even if service isn't delivered",
		"The vendor",
		"Negotiate refund policy or milestone-based payments",
	},
	"force-majeure-abuse": {
		"Company can suspend service for broadly defined reasons",
		"Service interruptions without refunds or remedies",
		"The service provider",
		"Narrow the definition and ensure refunds for extended outages",
	},
	"assignment-rights": {
		"Company can transfer contract to another party without your approval",
		"You might end up dealing with unknown third party",
		"The original company",
		"Require your consent before contract assignment",
	},
}

var hindiTemplates = map[string]Template{
	"liability-cap": {
		"कंपनी अपनी जिम्मेदारी को सीमित करती है",
		"₹10 लाख का नुकसान होने पर भी आपको केवल ₹50,000 मिल सकते हैं",
		"सेवा प्रदाता",
		"उच्च सीमा के लिए बातचीत करें या इसे हटाएं",
	},
	"indemnification": {
		"आप उनकी कानूनी लागत चुकाने के लिए सहमत हैं",
		"उनकी गलतियों के लिए आपको करोड़ों रुपये चुकाने पड़ सकते हैं",
		"दूसरी पार्टी",
		"'पारस्परिक क्षतिपूर्ति' का अनुरोध करें",
	},
}

var genericTemplates = map[string]Template{
	"en": {
		"This clause contains potential risks that should be reviewed carefully.",
		"Could impact your rights, obligations, or financial exposure.",
		"Typically favors the party that drafted the contract.",
		"Consult with a legal professional for detailed analysis.",
	},
	"hi": {
		"इस खंड में संभावित जोखिम हैं जिनकी सावधानीपूर्वक समीक्षा की जानी चाहिए।",
		"आपके अधिकारों या वित्तीय दायित्व को प्रभावित कर सकता है।",
		"आमतौर पर अनुबंध तैयार करने वाली पार्टी को।",
		"विस्तृत विश्लेषण के लिए कानूनी पेशेवर से परामर्श लें।",
	},
}

// TemplateFor returns the canned explanation for category id in lang
// ("en", "hi" or "both"). Unknown categories and missing Hindi entries fall
// back to the generic text of that language.
func TemplateFor(id, lang string) Template {
	switch lang {
	case "hi":
		if t, ok := hindiTemplates[id]; ok {
			return t
		}
		return genericTemplates["hi"]
	case "both":
		en, hi := TemplateFor(id, "en"), TemplateFor(id, "hi")
		return Template{
			Meaning:        en.Meaning + "\n" + hi.Meaning,
			Risk:           en.Risk + "\n" + hi.Risk,
			Beneficiary:    en.Beneficiary + "\n" + hi.Beneficiary,
			Recommendation: en.Recommendation + "\n" + hi.Recommendation,
		}
	default:
		if t, ok := englishTemplates[id]; ok {
			return t
		}
		return genericTemplates["en"]
	}
}

// Explanation converts the template for id into a model.Explanation tagged
// as template sourced.
func Explanation(id, lang string) *model.Explanation {
	t := TemplateFor(id, lang)
	if lang == "" {
		lang = "en"
	}
	return &model.Explanation{
		Meaning:        t.Meaning,
		Risk:           t.Risk,
		Beneficiary:    t.Beneficiary,
		Recommendation: t.Recommendation,
		Source:         model.SourceTemplate,
		Language:       lang,
	}
}

// MergedExplanation combines the templates of several categories found on
// one clause. Only the first two categories are used.
func MergedExplanation(ids []string, lang string) *model.Explanation {
	if len(ids) == 0 {
		return Explanation("", lang)
	}
	if len(ids) > 2 {
		ids = ids[:2]
	}
	out := Explanation(ids[0], lang)
	for _, id := range ids[1:] {
		next := TemplateFor(id, lang)
		out.Meaning += "\n" + next.Meaning
		out.Risk += "\n" + next.Risk
		out.Beneficiary += "\n" + next.Beneficiary
		out.Recommendation += "\n" + next.Recommendation
	}
	return out
}
