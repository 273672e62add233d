package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const talentsPage = `<html><body>
<ul class="talent_list">
  <li><a href="/talents/usada-pekora/"><h3>兎田ぺこら<span>Usada Pekora</span></h3></a></li>
  <li><a href="https://hololive.hololivepro.com/talents/roboco-san/"><h3> ロボ子さん <span>Robocosan</span></h3></a></li>
  <li class="graduate"><a href="/talents/minato-aqua/"><h3>湊あくあ<span>Minato Aqua</span></h3></a></li>
  <li><a href="/talents/broken/"><h3><span>No Japanese</span></h3></a></li>
</ul>
</body></html>`

const schedulePage = `<html><body>
<div class="container"><div class="col-12">
  <a class="thumbnail" href="https://www.youtube.com/watch?v=a" onclick="gtag('event','click',{'event_category':'兎田ぺこら','event_label':'x'})">
    <div class="name">ぺこら</div>
  </a>
  <a class="thumbnail" href="https://www.youtube.com/watch?v=b"><div class="name"> さくらみこ </div></a>
  <a class="thumbnail" href="https://www.youtube.com/watch?v=c" onclick='gtag("event","click",{"event_category":"兎田ぺこら"})'></a>
  <a class="thumbnail" href="https://www.youtube.com/watch?v=d"><div class="name">ホロライブ</div></a>
  <a class="thumbnail" href="https://www.youtube.com/watch?v=e"></a>
</div></div>
</body></html>`

func TestParseTalents(t *testing.T) {
	talents, err := ParseTalents(strings.NewReader(talentsPage), "https://hololive.hololivepro.com/talents")
	require.NoError(t, err)
	require.Len(t, talents, 3)

	assert.Equal(t, "兎田ぺこら", talents[0].Japanese)
	assert.Equal(t, "Usada Pekora", talents[0].English)
	assert.Equal(t, "https://hololive.hololivepro.com/talents/usada-pekora/", talents[0].Link)
	assert.Equal(t, "usada-pekora", talents[0].Slug())

	assert.Equal(t, "ロボ子さん", talents[1].Japanese)
	assert.Equal(t, "Robocosan", talents[1].English)

	assert.Equal(t, "graduated", talents[2].Status)
	assert.Empty(t, talents[0].Status)
}

func TestParseTalentsStructureChanged(t *testing.T) {
	_, err := ParseTalents(strings.NewReader("<html><body><p>maintenance</p></body></html>"), "")
	var structErr *StructureChangedError
	assert.ErrorAs(t, err, &structErr)
}

func TestParseScheduleNames(t *testing.T) {
	names, err := ParseScheduleNames(strings.NewReader(schedulePage))
	require.NoError(t, err)

	got := make([]string, len(names))
	for i, n := range names {
		got[i] = n.MemberName
	}
	assert.Equal(t, []string{"兎田ぺこら", "さくらみこ", "ホロライブ"}, got)

	_, err = ParseScheduleNames(strings.NewReader("<html></html>"))
	var structErr *StructureChangedError
	assert.ErrorAs(t, err, &structErr)
}

func TestExtractMemberFromOnClick(t *testing.T) {
	tests := map[string]string{
		`gtag('event','click',{'event_category':'宝鐘マリン'})`: "宝鐘マリン",
		`gtag("event","click",{"event_category":"AZKi"})`:  "AZKi",
		`gtag('event','click')`:                            "",
		`{'event_category':'unterminated`:                  "",
	}
	for input, want := range tests {
		assert.Equal(t, want, extractMemberFromOnClick(input), input)
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "Usada Pekora", normalizeText("  Usada \n Pekora "))
}
