package server

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/joseph-ayodele/logforms/internal/common"
)

type localized struct {
	en string
	ko string
}

// userMessages are keyed by error code, then by kind as a fallback.
var userMessages = map[string]localized{
	common.CodeUnsupportedMime: {
		en: "Unsupported file type. Upload a JPEG, PNG or WebP image, or a PDF.",
		ko: "지원하지 않는 파일 형식입니다. JPEG, PNG, WebP 이미지 또는 PDF 파일을 업로드해주세요.",
	},
	common.CodePayloadTooLarge: {
		en: "The upload is too large. Files may be at most 10 MB.",
		ko: "파일 크기가 너무 큽니다. 최대 10MB까지 업로드할 수 있습니다.",
	},
	common.CodeInvalidPayload: {
		en: "The file data could not be read.",
		ko: "파일 데이터를 읽을 수 없습니다.",
	},
	common.CodeContentMismatch: {
		en: "The file contents do not match the declared type.",
		ko: "파일 내용이 지정된 형식과 일치하지 않습니다.",
	},
	common.CodeMethodNotAllowed: {
		en: "Method not allowed.",
		ko: "허용되지 않는 요청 방식입니다.",
	},
	common.CodeOriginNotAllowed: {
		en: "Requests from this origin are not allowed.",
		ko: "허용되지 않은 출처에서의 요청입니다.",
	},
	common.CodeNotFound: {
		en: "Not found.",
		ko: "요청한 경로를 찾을 수 없습니다.",
	},
	common.CodeProviderNotAllowed: {
		en: "This storage provider is not enabled.",
		ko: "허용되지 않은 저장소 제공자입니다.",
	},
	common.CodeInvalidFieldValue: {
		en: "Some values could not be converted to their field types.",
		ko: "일부 값을 필드 형식으로 변환할 수 없습니다.",
	},
	common.CodeManualProvisioning: {
		en: "The table could not be created automatically. Create it manually with the provided SQL.",
		ko: "테이블을 자동으로 생성할 수 없습니다. 제공된 SQL로 테이블을 수동으로 생성해주세요.",
	},
	common.CodeConnectionFailed: {
		en: "Could not connect to the database.",
		ko: "데이터베이스에 연결할 수 없습니다.",
	},
	string(common.KindInputValidation): {
		en: "The request is invalid.",
		ko: "요청이 올바르지 않습니다.",
	},
	string(common.KindUpstreamService): {
		en: "The analysis service is unavailable. Please try again shortly.",
		ko: "분석 서비스를 사용할 수 없습니다. 잠시 후 다시 시도해주세요.",
	},
	string(common.KindResponseShape): {
		en: "The analysis result could not be understood. Please try again.",
		ko: "분석 결과를 해석할 수 없습니다. 다시 시도해주세요.",
	},
	string(common.KindStorageProvisioning): {
		en: "Setting up the table failed.",
		ko: "테이블 설정에 실패했습니다.",
	},
	string(common.KindStorageWrite): {
		en: "Saving the record failed.",
		ko: "데이터 저장에 실패했습니다.",
	},
	string(common.KindInternal): {
		en: "An unexpected error occurred.",
		ko: "예기치 않은 오류가 발생했습니다.",
	},
}

var (
	supportedLanguages = []language.Tag{language.English, language.Korean}
	languageMatcher    = language.NewMatcher(supportedLanguages)
	messageCatalog     = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, m := range userMessages {
		_ = b.SetString(language.English, key, m.en)
		_ = b.SetString(language.Korean, key, m.ko)
	}
	return b
}

// printerFor picks the best supported language for an Accept-Language header.
func printerFor(acceptLanguage string) *message.Printer {
	_, idx := language.MatchStrings(languageMatcher, acceptLanguage)
	return message.NewPrinter(supportedLanguages[idx], message.Catalog(messageCatalog))
}

// userMessage is the caller-facing text for ae in the requested language.
func userMessage(acceptLanguage string, ae *common.AppError) string {
	key := ae.Code
	if _, ok := userMessages[key]; !ok {
		key = string(ae.Kind)
	}
	if _, ok := userMessages[key]; !ok {
		key = string(common.KindInternal)
	}
	return printerFor(acceptLanguage).Sprintf(key)
}
