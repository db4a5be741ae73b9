package advisor

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"stock-advisor-backend/pkg/marketstats"
)

var (
	client    *genai.Client
	modelName string
)

// Init 初始化Gemini客户端。未配置GEMINI_API_KEY时client保持nil，
// 后续调用一律走备用分析，不阻塞启动
func Init(ctx context.Context, model string) {
	modelName = model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Println("[LLM] GEMINI_API_KEY 未配置，使用备用分析")
		return
	}
	c, err := genai.NewClient(ctx, nil)
	if err != nil {
		log.Printf("[LLM] Gemini客户端初始化失败: %v，使用备用分析", err)
		return
	}
	client = c
	log.Printf("[LLM] 使用模型: %s", modelName)
}

// Enabled 是否接入了真实模型
func Enabled() bool {
	return client != nil
}

// StockContext 喂给模型的个股行情摘要，零值字段按N/A处理
type StockContext struct {
	Symbol        string
	Company       string
	CurrentPrice  float64
	PreviousClose float64
	DayHigh       float64
	DayLow        float64
	Volume        int64
	MarketCap     int64
	PERatio       float64
	Sector        string
	Industry      string
	Week52High    float64
	Week52Low     float64
	RecentStats   []marketstats.Stat
}

const chatSystemPrompt = `You are a friendly and knowledgeable financial advisor for retail investors.
Provide clear, helpful advice about stocks, investing, portfolios, and financial planning.
Keep responses concise but informative. Use simple language for complex concepts.
If the user has shared their portfolio, provide personalized advice based on their holdings and risk profile.`

// AnalyzeStock 生成个股分析。模型不可用时返回备用分析，
// 模型调用出错时原样上抛
func AnalyzeStock(ctx context.Context, sc StockContext, question string) (string, error) {
	if question == "" {
		question = "What is your analysis of this stock?"
	}
	if client == nil {
		return fallbackAnalysis(sc), nil
	}

	prompt := buildAnalyzePrompt(sc, question)

	chat, err := client.Chats.Create(ctx, modelName, nil, nil)
	if err != nil {
		return "", err
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: prompt})
	if err != nil {
		return "", err
	}

	text := firstText(resp)
	if text == "" {
		log.Println("[LLM] 模型返回空结果，使用备用分析")
		return fallbackAnalysis(sc), nil
	}
	return text, nil
}

// Chat 理财对话，portfolioContext非空时一并提供给模型
func Chat(ctx context.Context, message, portfolioContext string) (string, error) {
	if client == nil {
		return fallbackChat(message, portfolioContext), nil
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: chatSystemPrompt}}},
	}
	chat, err := client.Chats.Create(ctx, modelName, cfg, nil)
	if err != nil {
		return "", err
	}

	prompt := "User: " + message
	if portfolioContext != "" {
		prompt = portfolioContext + "\n\n" + prompt
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: prompt})
	if err != nil {
		return "", err
	}

	text := firstText(resp)
	if text == "" {
		return fallbackChat(message, portfolioContext), nil
	}
	return text, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return resp.Candidates[0].Content.Parts[0].Text
}

// buildAnalyzePrompt 构建个股分析提示词
func buildAnalyzePrompt(sc StockContext, question string) string {
	return fmt.Sprintf(`You are an expert financial advisor. Analyze this stock data and answer the user's question.

%s

User Question: %s

Provide a concise, professional analysis with:
1. Current market analysis
2. Key metrics interpretation
3. Risk assessment
4. Investment recommendation (BUY/HOLD/SELL)
5. Reasoning

Keep response under 300 words.`, buildStockContext(sc), question)
}

// buildStockContext 行情摘要文本，缺失字段显示N/A
func buildStockContext(sc StockContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock: %s\n", orNA(sc.Symbol))
	fmt.Fprintf(&b, "Company: %s\n", orNA(sc.Company))
	fmt.Fprintf(&b, "Current Price: $%s\n", moneyOrNA(sc.CurrentPrice))
	fmt.Fprintf(&b, "Previous Close: $%s\n", moneyOrNA(sc.PreviousClose))
	fmt.Fprintf(&b, "Day High: $%s\n", moneyOrNA(sc.DayHigh))
	fmt.Fprintf(&b, "Day Low: $%s\n", moneyOrNA(sc.DayLow))
	fmt.Fprintf(&b, "Volume: %s\n", intOrNA(sc.Volume))
	fmt.Fprintf(&b, "Market Cap: $%s\n", intOrNA(sc.MarketCap))
	fmt.Fprintf(&b, "P/E Ratio: %s\n", moneyOrNA(sc.PERatio))
	fmt.Fprintf(&b, "Sector: %s\n", orNA(sc.Sector))
	fmt.Fprintf(&b, "Industry: %s\n", orNA(sc.Industry))
	fmt.Fprintf(&b, "52 Week High: $%s\n", moneyOrNA(sc.Week52High))
	fmt.Fprintf(&b, "52 Week Low: $%s", moneyOrNA(sc.Week52Low))

	if len(sc.RecentStats) > 0 {
		b.WriteString("\n\nRecent daily stats (date: close, 1d return, 20d volatility, RSI14):")
		for _, s := range sc.RecentStats {
			fmt.Fprintf(&b, "\n- %s: %.2f, %+.2f%%, %.4f, %.1f",
				s.TradeDate, s.Close, s.Return1D*100, s.Volatility20, s.RSI14)
		}
	}
	return b.String()
}

// fallbackAnalysis 模型不可用时的规则分析
func fallbackAnalysis(sc StockContext) string {
	changePct := 0.0
	if sc.PreviousClose > 0 {
		changePct = (sc.CurrentPrice - sc.PreviousClose) / sc.PreviousClose * 100
	}

	momentum := "trading flat against the previous close"
	if changePct > 0.5 {
		momentum = fmt.Sprintf("up %.2f%% from the previous close", changePct)
	} else if changePct < -0.5 {
		momentum = fmt.Sprintf("down %.2f%% from the previous close", -changePct)
	}

	valuation := "no P/E ratio is available"
	if sc.PERatio > 0 {
		switch {
		case sc.PERatio < 15:
			valuation = fmt.Sprintf("the P/E of %.1f sits at the low end of typical market valuations", sc.PERatio)
		case sc.PERatio > 30:
			valuation = fmt.Sprintf("the P/E of %.1f prices in high growth expectations", sc.PERatio)
		default:
			valuation = fmt.Sprintf("the P/E of %.1f is in a moderate range", sc.PERatio)
		}
	}

	rangeNote := ""
	if sc.Week52High > sc.Week52Low && sc.Week52Low > 0 && sc.CurrentPrice > 0 {
		pos := (sc.CurrentPrice - sc.Week52Low) / (sc.Week52High - sc.Week52Low) * 100
		rangeNote = fmt.Sprintf(" The price sits at %.0f%% of its 52-week range.", pos)
	}

	return fmt.Sprintf("%s (%s) is %s, and %s.%s Review the sector (%s) outlook and your own risk tolerance before acting."+
		" This summary was generated without the AI service; configure GEMINI_API_KEY for a full analysis.",
		orNA(sc.Company), orNA(sc.Symbol), momentum, valuation, rangeNote, orNA(sc.Sector))
}

// fallbackChat 模型不可用时的通用建议
func fallbackChat(message, portfolioContext string) string {
	reply := "The AI advisor is running without a language model, so here are general principles instead: " +
		"diversify across sectors, keep any single holding below about 30% of your portfolio, " +
		"and match your investments to a multi-year horizon."
	if portfolioContext != "" {
		reply += "\n\n" + portfolioContext
	}
	reply += fmt.Sprintf("\n\nYour question was: %q. Configure GEMINI_API_KEY for personalized answers.", message)
	return reply
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func moneyOrNA(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func intOrNA(v int64) string {
	if v == 0 {
		return "N/A"
	}
	return strconv.FormatInt(v, 10)
}
