package feed

import (
	"net/url"
	"strings"
	"testing"
)

func TestContentExtractor_ExtractsArticle(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head><title>Duyuru</title></head>
	<body>
		<header><h1>Site Başlığı</h1><nav>Menü</nav></header>
		<div class="wrapper">
			<div class="text-block">
				<p>Yabancı Diller Yüksekokulu hazırlık sınıfı öğrencilerinin dikkatine. Bu dönem yapılacak ara sınavların takvimi aşağıda yer almaktadır.</p>
				<p>Sınavlar belirtilen saatlerde ve belirtilen dersliklerde yapılacaktır. Öğrencilerin kimlik kartlarını yanlarında bulundurmaları gerekmektedir.</p>
				<p>Sınav kurallarına uymayan öğrencilerin sınavları geçersiz sayılacaktır. Sorularınız için öğrenci işleri ile iletişime geçebilirsiniz.</p>
			</div>
		</div>
		<footer><p>Telif Hakkı 2024</p></footer>
	</body>
	</html>
	`

	pageURL, _ := url.Parse("https://ydyo.ankaramedipol.edu.tr/p/1")
	result, err := extractor.Run([]byte(htmlContent), pageURL)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(result, "ara sınavların takvimi") {
		t.Errorf("Expected extracted content to contain article text, got: %s", result)
	}
	if strings.Contains(result, "Telif Hakkı 2024") {
		t.Errorf("Expected extracted content to exclude footer")
	}
}

func TestContentExtractor_EmptyInput(t *testing.T) {
	extractor := NewContentExtractor()

	_, err := extractor.Run(nil, nil)
	if err == nil {
		t.Error("Expected error for empty HTML data")
	}
}
