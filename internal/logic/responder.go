package logic

import (
	"context"
	"strings"

	"agroai-backend/internal/common"
	"agroai-backend/internal/db"
)

// ChatRequest input of a single chat turn
// History: earlier messages of the thread, oldest first, without Message
type ChatRequest struct {
	UserID   uint
	Message  string
	Language string
	History  []db.ChatMessage
}

// Responder produces the bot reply for one chat turn
type Responder interface {
	Respond(ctx context.Context, req ChatRequest) (string, error)
}

type keywordRule struct {
	keywords []string
	response string
}

type responseTable struct {
	rules    []keywordRule
	fallback string
}

// IrrigationAdvice fixed answer to irrigation questions in English
const IrrigationAdvice = "Water your crops early in the morning or in the evening to reduce evaporation. Check soil moisture 5 cm below the surface before irrigating, and prefer drip or furrow irrigation to save water."

var responseTables = map[string]responseTable{
	"en": {
		rules: []keywordRule{
			{[]string{"weather"}, "Based on current weather data, expect partly cloudy skies with temperatures around 28°C. Good conditions for most crops."},
			{[]string{"soil"}, "For your soil type, I recommend crops like rice, wheat, or vegetables depending on the season. Consider soil testing for specific nutrients."},
			{[]string{"crop"}, "Popular crops for this season include tomatoes, peppers, and leafy greens. Consider market demand in your area."},
			{[]string{"disease"}, "Common plant diseases this season include leaf blight and powdery mildew. Ensure proper spacing and ventilation."},
			{[]string{"price"}, "Current market prices show good rates for vegetables. Check the market section for detailed pricing."},
			{[]string{"irrigation"}, IrrigationAdvice},
			{[]string{"fertilizer"}, "Apply fertilizer based on a soil test. A balanced NPK dose at sowing followed by nitrogen top dressing works for most cereals. Add compost or farmyard manure to improve soil health."},
			{[]string{"harvest"}, "Harvest when the crop reaches physiological maturity and the weather is dry. Dry the produce well before storage to avoid losses."},
		},
		fallback: "I understand you want farming advice. Could you be more specific about crops, weather, soil, diseases, or market prices?",
	},
	"hi": {
		rules: []keywordRule{
			{[]string{"weather", "मौसम"}, "मौसम के अनुसार आसमान में आंशिक बादल रहेंगे और तापमान लगभग 28°C रहेगा। अधिकांश फसलों के लिए परिस्थितियाँ अच्छी हैं।"},
			{[]string{"soil", "मिट्टी"}, "आपकी मिट्टी के अनुसार मौसम के हिसाब से धान, गेहूं या सब्जियां उगाएं। पोषक तत्वों के लिए मिट्टी की जांच कराएं।"},
			{[]string{"crop", "फसल"}, "इस मौसम में टमाटर, मिर्च और पत्तेदार सब्जियां लोकप्रिय फसलें हैं। अपने क्षेत्र में बाजार की मांग देखें।"},
			{[]string{"disease", "रोग", "बीमारी"}, "इस मौसम में पत्ती झुलसा और चूर्णिल आसिता आम रोग हैं। पौधों के बीच उचित दूरी और हवा का प्रवाह रखें।"},
			{[]string{"price", "भाव", "कीमत"}, "सब्जियों के बाजार भाव अभी अच्छे हैं। विस्तृत भाव के लिए बाजार अनुभाग देखें।"},
			{[]string{"irrigation", "सिंचाई"}, "सुबह जल्दी या शाम को सिंचाई करें ताकि पानी कम उड़े। सिंचाई से पहले 5 सेमी गहराई पर मिट्टी की नमी जांचें और पानी बचाने के लिए ड्रिप सिंचाई अपनाएं।"},
			{[]string{"fertilizer", "खाद", "उर्वरक"}, "मिट्टी की जांच के आधार पर खाद डालें। बुवाई के समय संतुलित NPK और बाद में नाइट्रोजन की टॉप ड्रेसिंग करें। गोबर की खाद से मिट्टी की सेहत सुधरती है।"},
			{[]string{"harvest", "कटाई"}, "फसल पूरी तरह पकने पर और सूखे मौसम में कटाई करें। भंडारण से पहले उपज को अच्छी तरह सुखाएं।"},
		},
		fallback: "मैं समझता हूं कि आपको खेती की सलाह चाहिए। कृपया फसल, मौसम, मिट्टी, रोग या बाजार भाव के बारे में स्पष्ट पूछें।",
	},
}

// ResolveLanguage falls back to English for codes without a response table
func ResolveLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if _, ok := responseTables[code]; ok {
		return code
	}
	return common.DefaultLanguage
}

// KeywordResponder canned answers picked by the first keyword found in the message
type KeywordResponder struct{}

func NewKeywordResponder() *KeywordResponder {
	return &KeywordResponder{}
}

func (KeywordResponder) Respond(_ context.Context, req ChatRequest) (string, error) {
	table := responseTables[ResolveLanguage(req.Language)]
	message := strings.ToLower(req.Message)
	for _, rule := range table.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(message, kw) {
				return rule.response, nil
			}
		}
	}
	return table.fallback, nil
}
